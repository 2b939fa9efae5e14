package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

const aggregatorPage = `<html><body>
	<a href="https://www.instagram.com/acme">Instagram</a>
	<a href="https://www.facebook.com/acme">Facebook</a>
	<a href="https://acme.com">Our website</a>
	<a href="https://shop.acme.com">Shop</a>
	<a href="#section">Jump</a>
	<a href="mailto:info@acme.com">Email us</a>
	<a href="https://acme.com">Our website again</a>
</body></html>`

func TestAggregatorResolve(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://linktr.ee/acme": aggregatorPage,
	})
	r := NewAggregatorResolver(fetcher, testClassifier(), 20)

	links := r.Resolve(context.Background(), "https://linktr.ee/acme")

	assert.Equal(t, []string{
		"https://www.instagram.com/acme",
		"https://www.facebook.com/acme",
	}, links.SocialLinks)
	assert.Equal(t, []string{
		"https://acme.com",
		"https://shop.acme.com",
	}, links.WebsiteLinks)
}

func TestAggregatorResolve_CapsWebsiteLinks(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://linktr.ee/acme": `<html><body>
			<a href="https://a.example">a</a>
			<a href="https://b.example">b</a>
			<a href="https://c.example">c</a>
		</body></html>`,
	})
	r := NewAggregatorResolver(fetcher, testClassifier(), 2)

	links := r.Resolve(context.Background(), "https://linktr.ee/acme")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, links.WebsiteLinks)
}

func TestAggregatorResolve_FetchFailure(t *testing.T) {
	fetcher := newStubFetcher(nil)
	r := NewAggregatorResolver(fetcher, testClassifier(), 20)

	links := r.Resolve(context.Background(), "https://linktr.ee/missing")

	assert.Empty(t, links.SocialLinks)
	assert.Empty(t, links.WebsiteLinks)
}

func TestAggregatorResolve_EmptyURL(t *testing.T) {
	fetcher := newStubFetcher(nil)
	r := NewAggregatorResolver(fetcher, testClassifier(), 20)

	links := r.Resolve(context.Background(), "")

	assert.Empty(t, links.SocialLinks)
	assert.Empty(t, links.WebsiteLinks)
	assert.Empty(t, fetcher.fetchedURLs())
}
