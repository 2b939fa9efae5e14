package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/pipeline"
	"github.com/sells-group/contact-scout/internal/profile"
	"github.com/sells-group/contact-scout/internal/store"
	"github.com/sells-group/contact-scout/pkg/google"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "contact-scout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initResolver wires the pipeline. When st is non-nil, page fetches go
// through the store-backed read-through cache and the returned
// CachingFetcher must be flushed when the run finishes; otherwise the
// second return is nil.
func initResolver(st store.Store) (*pipeline.ProfileResolver, *fetch.CachingFetcher) {
	var fetcher fetch.Fetcher = fetch.NewHTTPFetcher(cfg.Fetch)
	var pageCache *fetch.CachingFetcher
	if st != nil {
		pageCache = fetch.NewCachingFetcher(fetcher, st, cfg.Store.CacheTTL())
		fetcher = pageCache
	}

	classifier := pipeline.NewClassifier(cfg.Links)
	extractor := pipeline.NewExtractor(classifier, cfg.Resolve.PhoneRegion)

	resolver := pipeline.NewProfileResolver(
		profile.NewHTTPSource(cfg.Fetch),
		classifier,
		pipeline.NewAggregatorResolver(fetcher, classifier, cfg.Resolve.MaxLinks),
		pipeline.NewEnricher(fetcher, extractor, cfg.Resolve.MaxSecondaryPages, cfg.Resolve.MaxWorkers),
		pipeline.NewSupplementer(fetcher, extractor, classifier, cfg.Resolve.SupplementPlatform),
		pipeline.NewCompanyParser(fetcher),
	)
	if cfg.Google.APIKey != "" && cfg.Google.SearchCX != "" {
		resolver = resolver.WithSearch(google.NewClient(cfg.Google.APIKey, cfg.Google.SearchCX))
	}
	return resolver, pageCache
}
