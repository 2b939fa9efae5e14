package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-scout/internal/model"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Handle string          `json:"handle,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for resolution runs and the
// fetched-page cache.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, handle string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.ResolvedProfile) error
	FailRun(ctx context.Context, runID string, status model.RunStatus, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Page cache
	GetCachedPage(ctx context.Context, pageURL string) ([]byte, error)
	SetCachedPage(ctx context.Context, pageURL string, body []byte, ttl time.Duration) error
	SetCachedPages(ctx context.Context, pages []model.CachedPage, ttl time.Duration) error
	DeleteExpiredPages(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
