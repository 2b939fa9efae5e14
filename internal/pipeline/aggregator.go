package pipeline

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
)

// AggregatorResolver expands a link-in-bio page into the links it lists,
// partitioned into social links and website links.
type AggregatorResolver struct {
	fetcher    fetch.Fetcher
	classifier *Classifier
	maxLinks   int
}

// NewAggregatorResolver builds a resolver. maxLinks caps WebsiteLinks to
// bound downstream enrichment work.
func NewAggregatorResolver(fetcher fetch.Fetcher, classifier *Classifier, maxLinks int) *AggregatorResolver {
	if maxLinks <= 0 {
		maxLinks = 20
	}
	return &AggregatorResolver{fetcher: fetcher, classifier: classifier, maxLinks: maxLinks}
}

// Resolve fetches the aggregator page and partitions its outbound links.
// Every failure degrades to an empty LinkSet: an unresolvable bio link is
// a normal, non-fatal outcome for the caller.
func (r *AggregatorResolver) Resolve(ctx context.Context, aggregatorURL string) model.LinkSet {
	var links model.LinkSet
	if aggregatorURL == "" {
		return links
	}

	page, err := r.fetcher.Fetch(ctx, aggregatorURL)
	if err != nil {
		zap.L().Warn("aggregator: fetch failed",
			zap.String("url", aggregatorURL),
			zap.Error(err),
		)
		return links
	}

	seenSocial := make(map[string]bool)
	seenWebsite := make(map[string]bool)

	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}

		if r.classifier.IsSocial(href) {
			if !seenSocial[href] {
				seenSocial[href] = true
				links.SocialLinks = append(links.SocialLinks, href)
			}
			return
		}

		if href == aggregatorURL || seenWebsite[href] {
			return
		}
		seenWebsite[href] = true
		links.WebsiteLinks = append(links.WebsiteLinks, href)
	})

	// Cap website links, preserving first-seen order.
	if len(links.WebsiteLinks) > r.maxLinks {
		links.WebsiteLinks = links.WebsiteLinks[:r.maxLinks]
	}

	zap.L().Info("aggregator: resolved links",
		zap.String("url", aggregatorURL),
		zap.Int("social", len(links.SocialLinks)),
		zap.Int("websites", len(links.WebsiteLinks)),
	)
	return links
}
