package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-scout/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "acmestudio")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "acmestudio", run.Handle)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusResolving))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusResolving, got.Status)
	assert.Nil(t, got.Result)
	assert.Empty(t, got.Error)

	result := &model.ResolvedProfile{
		Handle:       "acmestudio",
		PrimaryEmail: "info@acme.com",
		Bundle: &model.ContactBundle{
			Emails: []string{"info@acme.com"},
			Phones: []model.PhoneCandidate{{Number: "+1 212-555-0123", Label: "Main Office", Score: 15}},
		},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "info@acme.com", got.Result.PrimaryEmail)
	require.NotNil(t, got.Result.Bundle)
	assert.Equal(t, 15, got.Result.Bundle.Phones[0].Score)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "ghost")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, model.RunStatusNotFound, "profile not found"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusNotFound, got.Status)
	assert.Equal(t, "profile not found", got.Error)
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "missing")
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.UpdateRunStatus(ctx, "missing", model.RunStatusComplete)
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.FailRun(ctx, "missing", model.RunStatusFailed, "boom")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "alpha")
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, "beta")
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, b.ID, model.RunStatusComplete))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, b.ID, complete[0].ID)

	byHandle, err := s.ListRuns(ctx, RunFilter{Handle: "alpha"})
	require.NoError(t, err)
	require.Len(t, byHandle, 1)
	assert.Equal(t, a.ID, byHandle[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLitePageCache(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	body, err := s.GetCachedPage(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Nil(t, body)

	require.NoError(t, s.SetCachedPage(ctx, "https://acme.com", []byte("<html>v1</html>"), time.Hour))

	body, err = s.GetCachedPage(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>v1</html>"), body)

	// Upsert replaces the stored body.
	require.NoError(t, s.SetCachedPage(ctx, "https://acme.com", []byte("<html>v2</html>"), time.Hour))

	body, err = s.GetCachedPage(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>v2</html>"), body)
}

func TestSQLitePageCacheExpiry(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetCachedPage(ctx, "https://stale.example", []byte("old"), -time.Hour))
	require.NoError(t, s.SetCachedPage(ctx, "https://fresh.example", []byte("new"), time.Hour))

	body, err := s.GetCachedPage(ctx, "https://stale.example")
	require.NoError(t, err)
	assert.Nil(t, body)

	n, err := s.DeleteExpiredPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	body, err = s.GetCachedPage(ctx, "https://fresh.example")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), body)
}

func TestSQLiteSetCachedPages(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	pages := []model.CachedPage{
		{URL: "https://a.example", Body: []byte("a")},
		{URL: "https://b.example", Body: []byte("b")},
	}
	require.NoError(t, s.SetCachedPages(ctx, pages, time.Hour))

	body, err := s.GetCachedPage(ctx, "https://b.example")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), body)
}
