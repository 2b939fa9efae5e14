package pipeline

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
)

// Enricher crawls a destination website for contact facts: the given page,
// a conditional root fallback, and discovered contact/about pages.
type Enricher struct {
	fetcher           fetch.Fetcher
	extractor         *Extractor
	maxSecondaryPages int
	maxWorkers        int
}

// NewEnricher builds an Enricher. maxWorkers bounds concurrent per-site
// enrichment in EnrichAll.
func NewEnricher(fetcher fetch.Fetcher, extractor *Extractor, maxSecondaryPages, maxWorkers int) *Enricher {
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	return &Enricher{
		fetcher:           fetcher,
		extractor:         extractor,
		maxSecondaryPages: maxSecondaryPages,
		maxWorkers:        maxWorkers,
	}
}

// Enrich crawls one website and returns its fact bundle. Fetch failures
// contribute nothing and are never propagated; the bundle may be empty.
// Page fetches within a single site are sequential because each secondary
// fetch depends on discovery from an already-fetched page.
func (e *Enricher) Enrich(ctx context.Context, siteURL string) *model.ContactBundle {
	bundle := model.NewContactBundle()
	if siteURL == "" {
		return bundle
	}

	zap.L().Info("enrich: starting website", zap.String("url", siteURL))

	page, err := e.fetcher.Fetch(ctx, siteURL)
	if err != nil {
		zap.L().Warn("enrich: fetch failed",
			zap.String("url", siteURL),
			zap.Error(err),
		)
		return bundle
	}
	bundle.RecordPage(siteURL)
	e.extractor.Extract(page, bundle)

	// Root fallback: sub-path landing pages often miss the header/footer
	// contact info the bare root carries.
	if len(bundle.SocialLinks) == 0 && len(bundle.Emails) == 0 {
		if rootURL, ok := rootOf(siteURL); ok {
			zap.L().Info("enrich: falling back to root",
				zap.String("url", siteURL),
				zap.String("root", rootURL),
			)
			if rootPage, err := e.fetcher.Fetch(ctx, rootURL); err == nil {
				bundle.RecordPage(rootURL)
				e.extractor.Extract(rootPage, bundle)
				page = rootPage
			} else {
				zap.L().Warn("enrich: root fallback fetch failed",
					zap.String("root", rootURL),
					zap.Error(err),
				)
			}
		}
	}

	// Secondary pages are discovered from the most recently fetched page.
	for _, secondary := range DiscoverSecondaryPages(page, e.maxSecondaryPages) {
		if bundle.Scraped(secondary) {
			continue
		}
		subPage, err := e.fetcher.Fetch(ctx, secondary)
		if err != nil {
			zap.L().Warn("enrich: secondary page fetch failed",
				zap.String("url", secondary),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("enrich: scraped secondary page", zap.String("url", secondary))
		bundle.RecordPage(secondary)
		e.extractor.Extract(subPage, bundle)
	}

	bundle.SortPhones()
	return bundle
}

// EnrichAll enriches several independent websites concurrently with a
// bounded worker pool and merges their bundles. Merge is commutative and
// idempotent, so completion order never affects the final contents; the
// merge itself is serialized because bundle mutation is not safe for
// concurrent writers.
func (e *Enricher) EnrichAll(ctx context.Context, siteURLs []string) *model.ContactBundle {
	combined := model.NewContactBundle()
	if len(siteURLs) == 0 {
		return combined
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxWorkers)

	for _, siteURL := range siteURLs {
		g.Go(func() error {
			bundle := e.Enrich(gCtx, siteURL)
			mu.Lock()
			combined.Merge(bundle)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	combined.SortPhones()
	return combined
}

// rootOf returns the scheme://host root of rawURL and whether rawURL is
// not already that root.
func rootOf(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	root := u.Scheme + "://" + u.Host
	if strings.TrimRight(rawURL, "/") == strings.TrimRight(root, "/") {
		return "", false
	}
	return root, true
}
