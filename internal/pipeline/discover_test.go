package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoverSecondaryPages(t *testing.T) {
	html := `<html><body>
		<a href="/contact">Contact</a>
		<a href="/about-us">Our Story</a>
		<a href="/products">Products</a>
		<a href="https://other.example/contact">External contact</a>
		<a href="/contact">Contact again</a>
	</body></html>`

	page := mustPage(t, "https://acme.com", html)
	pages := DiscoverSecondaryPages(page, 10)

	assert.Equal(t, []string{
		"https://acme.com/contact",
		"https://acme.com/about-us",
	}, pages)
}

func TestDiscoverSecondaryPages_MatchesAnchorText(t *testing.T) {
	html := `<html><body>
		<a href="/reach-us">Contact our team</a>
	</body></html>`

	page := mustPage(t, "https://acme.com", html)
	pages := DiscoverSecondaryPages(page, 10)

	assert.Equal(t, []string{"https://acme.com/reach-us"}, pages)
}

func TestDiscoverSecondaryPages_Cap(t *testing.T) {
	html := `<html><body>
		<a href="/contact-1">c</a>
		<a href="/contact-2">c</a>
		<a href="/contact-3">c</a>
	</body></html>`

	page := mustPage(t, "https://acme.com", html)
	pages := DiscoverSecondaryPages(page, 2)

	assert.Equal(t, []string{
		"https://acme.com/contact-1",
		"https://acme.com/contact-2",
	}, pages)
}
