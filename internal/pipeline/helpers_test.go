package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-scout/internal/config"
	"github.com/sells-group/contact-scout/internal/fetch"
)

// stubFetcher serves canned HTML by URL and records fetch order. Safe for
// concurrent use so EnrichAll tests can share one instance.
type stubFetcher struct {
	mu        sync.Mutex
	pages     map[string]string
	finalURLs map[string]string
	fetched   []string
}

func newStubFetcher(pages map[string]string) *stubFetcher {
	return &stubFetcher{pages: pages}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	html, ok := f.pages[url]
	if !ok {
		return nil, eris.Errorf("no page for %s", url)
	}
	f.fetched = append(f.fetched, url)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	finalURL := url
	if override, ok := f.finalURLs[url]; ok {
		finalURL = override
	}
	return &fetch.Page{
		URL:        url,
		FinalURL:   finalURL,
		StatusCode: 200,
		Body:       []byte(html),
		Doc:        doc,
	}, nil
}

func (f *stubFetcher) fetchedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

func testClassifier() *Classifier {
	return NewClassifier(config.LinksConfig{
		AggregatorServices: []string{"linktr.ee", "beacons.ai", "bio.link"},
		SocialPlatforms: map[string][]string{
			"linkedin":  {"linkedin.com"},
			"facebook":  {"facebook.com", "fb.com"},
			"instagram": {"instagram.com"},
			"twitter":   {"twitter.com", "x.com"},
			"youtube":   {"youtube.com", "youtu.be"},
			"tiktok":    {"tiktok.com"},
		},
	})
}

func testExtractor() *Extractor {
	return NewExtractor(testClassifier(), "US")
}

func mustPage(t *testing.T, url, html string) *fetch.Page {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return &fetch.Page{
		URL:        url,
		FinalURL:   url,
		StatusCode: 200,
		Body:       []byte(html),
		Doc:        doc,
	}
}
