package fetch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-scout/internal/model"
)

type memCache struct {
	pages      map[string][]byte
	getErr     error
	setErr     error
	lastTTL    time.Duration
	batchCalls int
}

func newMemCache() *memCache {
	return &memCache{pages: map[string][]byte{}}
}

func (c *memCache) GetCachedPage(_ context.Context, pageURL string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.pages[pageURL], nil
}

func (c *memCache) SetCachedPage(_ context.Context, pageURL string, body []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.pages[pageURL] = body
	c.lastTTL = ttl
	return nil
}

func (c *memCache) SetCachedPages(_ context.Context, pages []model.CachedPage, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.batchCalls++
	for _, page := range pages {
		c.pages[page.URL] = page.Body
	}
	c.lastTTL = ttl
	return nil
}

// singularCache hides the batch method so Flush falls back to per-page
// writes.
type singularCache struct {
	c *memCache
}

func (s *singularCache) GetCachedPage(ctx context.Context, pageURL string) ([]byte, error) {
	return s.c.GetCachedPage(ctx, pageURL)
}

func (s *singularCache) SetCachedPage(ctx context.Context, pageURL string, body []byte, ttl time.Duration) error {
	return s.c.SetCachedPage(ctx, pageURL, body, ttl)
}

type countingFetcher struct {
	html  string
	err   error
	calls int
}

func (f *countingFetcher) Fetch(_ context.Context, url string) (*Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.html))
	if err != nil {
		return nil, err
	}
	return &Page{URL: url, FinalURL: url, StatusCode: 200, Body: []byte(f.html), Doc: doc}, nil
}

func TestCachingFetcher_MissBuffersUntilFlush(t *testing.T) {
	inner := &countingFetcher{html: `<html><body><p>hello</p></body></html>`}
	cache := newMemCache()
	f := NewCachingFetcher(inner, cache, time.Hour)
	ctx := context.Background()

	first, err := f.Fetch(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "hello", first.Doc.Find("p").Text())
	assert.Empty(t, cache.pages, "nothing persisted before flush")

	// Repeat fetches within a run are served from the buffer.
	second, err := f.Fetch(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "hello", second.Doc.Find("p").Text())
	assert.Equal(t, 200, second.StatusCode)

	require.NoError(t, f.Flush(ctx))
	assert.Equal(t, 1, cache.batchCalls)
	assert.Contains(t, cache.pages, "https://acme.com")
	assert.Equal(t, time.Hour, cache.lastTTL)

	// After the flush the persisted copy serves the hit.
	third, err := f.Fetch(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "hello", third.Doc.Find("p").Text())
}

func TestCachingFetcher_FlushBatchesAllPages(t *testing.T) {
	inner := &countingFetcher{html: `<html><body>ok</body></html>`}
	cache := newMemCache()
	f := NewCachingFetcher(inner, cache, time.Hour)
	ctx := context.Background()

	_, err := f.Fetch(ctx, "https://acme.com")
	require.NoError(t, err)
	_, err = f.Fetch(ctx, "https://acme.com/contact")
	require.NoError(t, err)

	require.NoError(t, f.Flush(ctx))
	assert.Equal(t, 1, cache.batchCalls, "one round trip for the whole run")
	assert.Len(t, cache.pages, 2)

	// The buffer is cleared; a second flush writes nothing.
	require.NoError(t, f.Flush(ctx))
	assert.Equal(t, 1, cache.batchCalls)
}

func TestCachingFetcher_FlushSingularFallback(t *testing.T) {
	inner := &countingFetcher{html: `<html><body>ok</body></html>`}
	cache := newMemCache()
	f := NewCachingFetcher(inner, &singularCache{c: cache}, time.Hour)
	ctx := context.Background()

	_, err := f.Fetch(ctx, "https://acme.com")
	require.NoError(t, err)

	require.NoError(t, f.Flush(ctx))
	assert.Equal(t, 0, cache.batchCalls)
	assert.Contains(t, cache.pages, "https://acme.com")
	assert.Equal(t, time.Hour, cache.lastTTL)
}

func TestCachingFetcher_FlushErrorPropagates(t *testing.T) {
	inner := &countingFetcher{html: `<html><body>ok</body></html>`}
	cache := newMemCache()
	cache.setErr = eris.New("cache offline")
	f := NewCachingFetcher(inner, cache, time.Hour)
	ctx := context.Background()

	page, err := f.Fetch(ctx, "https://acme.com")
	require.NoError(t, err, "the fetch itself still succeeds")
	assert.NotNil(t, page)

	assert.Error(t, f.Flush(ctx))
}

func TestCachingFetcher_FlushEmptyIsNoop(t *testing.T) {
	inner := &countingFetcher{html: `<html></html>`}
	cache := newMemCache()
	f := NewCachingFetcher(inner, cache, time.Hour)

	require.NoError(t, f.Flush(context.Background()))
	assert.Equal(t, 0, cache.batchCalls)
	assert.Empty(t, cache.pages)
}

func TestCachingFetcher_CacheReadErrorDegradesToFetch(t *testing.T) {
	inner := &countingFetcher{html: `<html><body>ok</body></html>`}
	cache := newMemCache()
	cache.getErr = eris.New("cache offline")
	f := NewCachingFetcher(inner, cache, time.Hour)

	_, err := f.Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestCachingFetcher_InnerErrorPropagates(t *testing.T) {
	inner := &countingFetcher{err: eris.New("unreachable")}
	f := NewCachingFetcher(inner, newMemCache(), time.Hour)

	_, err := f.Fetch(context.Background(), "https://down.example")
	assert.Error(t, err)
}

func TestCachingFetcher_DefaultTTL(t *testing.T) {
	inner := &countingFetcher{html: `<html></html>`}
	cache := newMemCache()
	f := NewCachingFetcher(inner, cache, 0)
	ctx := context.Background()

	_, err := f.Fetch(ctx, "https://acme.com")
	require.NoError(t, err)
	require.NoError(t, f.Flush(ctx))
	assert.Equal(t, 24*time.Hour, cache.lastTTL)
}
