package fetch

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/model"
)

// PageCache persists raw page bodies between runs. The store layer
// implements it.
type PageCache interface {
	GetCachedPage(ctx context.Context, pageURL string) ([]byte, error)
	SetCachedPage(ctx context.Context, pageURL string, body []byte, ttl time.Duration) error
}

// BatchPageCache is implemented by caches that can persist a run's pages
// in one round trip. Flush uses it when available.
type BatchPageCache interface {
	PageCache
	SetCachedPages(ctx context.Context, pages []model.CachedPage, ttl time.Duration) error
}

// CachingFetcher wraps a Fetcher with a read-through page cache. Cache
// read errors degrade to the inner fetcher; a run never fails because
// the cache is unavailable. Fetched bodies are buffered in memory and
// written back in one batch when Flush is called at the end of a run.
type CachingFetcher struct {
	inner Fetcher
	cache PageCache
	ttl   time.Duration

	mu      sync.Mutex
	pending map[string][]byte
}

func NewCachingFetcher(inner Fetcher, cache PageCache, ttl time.Duration) *CachingFetcher {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachingFetcher{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		pending: make(map[string][]byte),
	}
}

func (c *CachingFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	c.mu.Lock()
	body, buffered := c.pending[url]
	c.mu.Unlock()
	if buffered {
		return pageFromBody(url, body)
	}

	body, err := c.cache.GetCachedPage(ctx, url)
	if err != nil {
		zap.L().Warn("fetch: page cache read failed", zap.String("url", url), zap.Error(err))
	}
	if body != nil {
		zap.L().Debug("fetch: page cache hit", zap.String("url", url))
		return pageFromBody(url, body)
	}

	page, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pending[url] = page.Body
	c.mu.Unlock()
	return page, nil
}

// Flush persists every page fetched since the last flush and clears the
// buffer. Caches that support batch writes get the whole set in a single
// round trip.
func (c *CachingFetcher) Flush(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string][]byte)
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	if batch, ok := c.cache.(BatchPageCache); ok {
		pages := make([]model.CachedPage, 0, len(pending))
		for url, body := range pending {
			pages = append(pages, model.CachedPage{URL: url, Body: body})
		}
		if err := batch.SetCachedPages(ctx, pages, c.ttl); err != nil {
			return eris.Wrap(err, "fetch: flush page cache")
		}
		zap.L().Debug("fetch: flushed page cache", zap.Int("pages", len(pages)))
		return nil
	}

	for url, body := range pending {
		if err := c.cache.SetCachedPage(ctx, url, body, c.ttl); err != nil {
			return eris.Wrapf(err, "fetch: flush page cache for %s", url)
		}
	}
	zap.L().Debug("fetch: flushed page cache", zap.Int("pages", len(pending)))
	return nil
}

// pageFromBody rebuilds a Page from a cached body. Cached pages always
// present as a 200 at the originally requested URL.
func pageFromBody(url string, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse cached html for %s", url)
	}
	return &Page{
		URL:        url,
		FinalURL:   url,
		StatusCode: http.StatusOK,
		Body:       body,
		Doc:        doc,
	}, nil
}
