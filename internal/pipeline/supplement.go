package pipeline

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
)

const supplementPhoneScore = 5

// Supplementer backfills a bundle from one of the profile's own social
// pages when website mining left gaps. Public business pages routinely
// publish a phone or email the website itself omits.
type Supplementer struct {
	fetcher    fetch.Fetcher
	extractor  *Extractor
	classifier *Classifier
	platform   string
}

func NewSupplementer(fetcher fetch.Fetcher, extractor *Extractor, classifier *Classifier, platform string) *Supplementer {
	return &Supplementer{
		fetcher:    fetcher,
		extractor:  extractor,
		classifier: classifier,
		platform:   platform,
	}
}

// Needed reports whether the bundle is still missing a phone or a postal
// address. Either gap alone triggers the supplemental scrape.
func (s *Supplementer) Needed(bundle *model.ContactBundle) bool {
	return len(bundle.Phones) == 0 || len(bundle.Addresses) == 0
}

// Supplement scrapes the first social link on the configured platform and
// folds anything found into bundle. It is a best-effort pass; failures
// are logged and swallowed.
func (s *Supplementer) Supplement(ctx context.Context, bundle *model.ContactBundle) {
	pageURL := s.pickLink(bundle.SocialLinks)
	if pageURL == "" {
		return
	}
	if bundle.Scraped(pageURL) {
		return
	}

	zap.L().Info("supplement: scraping social page",
		zap.String("platform", s.platform),
		zap.String("url", pageURL),
	)

	page, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		zap.L().Warn("supplement: fetch failed",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return
	}
	bundle.RecordPage(pageURL)

	s.extractor.extractEmails(page, bundle)

	// Business pages expose contact details through OpenGraph meta tags
	// even when the rendered markup hides them behind scripts.
	page.Doc.Find(`meta[property="og:email"], meta[name="og:email"]`).Each(func(_ int, sel *goquery.Selection) {
		if email := strings.ToLower(strings.TrimSpace(sel.AttrOr("content", ""))); email != "" && emailPattern.MatchString(email) {
			bundle.AddEmail(email)
		}
	})

	if len(bundle.Phones) == 0 {
		text := pageText(page)
		for _, number := range s.extractor.phones.find(text) {
			bundle.AddPhone(model.PhoneCandidate{
				Number: number,
				Label:  "Facebook Page",
				Score:  supplementPhoneScore,
			})
		}
	}

	if len(bundle.Addresses) == 0 {
		s.extractor.extractAddresses(page, bundle)
	}

	bundle.SortPhones()
}

// pickLink returns the first collected social link on the configured
// platform, preserving collection order.
func (s *Supplementer) pickLink(socialLinks []string) string {
	for _, link := range socialLinks {
		if name, ok := s.classifier.Platform(link); ok && name == s.platform {
			return link
		}
	}
	return ""
}
