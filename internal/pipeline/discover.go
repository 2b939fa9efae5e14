package pipeline

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-scout/internal/fetch"
)

// secondaryKeywords mark anchors worth a follow-up crawl. Matching against
// both the anchor text and the href is deliberately aggressive: recall
// matters more than precision because extracting from an irrelevant page
// simply contributes no facts.
var secondaryKeywords = []string{"contact", "about"}

// DiscoverSecondaryPages returns same-host contact/about page URLs linked
// from page, in first-seen order, capped at maxPages (0 = no cap).
func DiscoverSecondaryPages(page *fetch.Page, maxPages int) []string {
	base, err := url.Parse(page.URL)
	if err != nil {
		return nil
	}

	var pages []string
	seen := make(map[string]bool)

	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(ref)
		if absolute.Host != base.Host {
			return
		}

		text := strings.ToLower(strings.TrimSpace(s.Text()))
		lowerHref := strings.ToLower(href)
		if !matchesSecondaryKeyword(text, lowerHref) {
			return
		}

		full := absolute.String()
		if !seen[full] {
			seen[full] = true
			pages = append(pages, full)
		}
	})

	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages
}

func matchesSecondaryKeyword(text, href string) bool {
	for _, kw := range secondaryKeywords {
		if strings.Contains(text, kw) || strings.Contains(href, kw) {
			return true
		}
	}
	return false
}
