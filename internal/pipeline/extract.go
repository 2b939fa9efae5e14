package pipeline

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
)

// maxEmailLen rejects regex matches that ran into adjacent text.
const maxEmailLen = 50

// maxLeafChildren bounds how many direct element children a block may have
// and still be scanned for phones/addresses; whole-page containers would
// otherwise be double-counted through their descendants.
const maxLeafChildren = 3

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// imageSuffixes guard against emails that captured a neighboring
	// filename, e.g. "logo@2x.png".
	imageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif"}
)

// contactBlockSelector covers the leaf-like block elements scanned for
// phones; addressBlockSelector additionally includes semantic <address>
// containers and drops anchors.
const (
	contactBlockSelector = "p, div, span, li, td, a"
	addressBlockSelector = "div, p, span, li, td, address"
)

// Extractor mines a fetched page for emails, scored phone numbers, merged
// postal addresses, and social links, accumulating them into a bundle.
type Extractor struct {
	classifier *Classifier
	phones     *phoneMatcher
}

// NewExtractor builds an Extractor. region is the default phone-number
// region (e.g. "US") used for numbers written without a country code.
func NewExtractor(classifier *Classifier, region string) *Extractor {
	return &Extractor{
		classifier: classifier,
		phones:     newPhoneMatcher(region),
	}
}

// Extract mutates bundle with every fact found on page. Duplicate facts
// are no-ops except phones, where the higher-scoring candidate wins.
func (e *Extractor) Extract(page *fetch.Page, bundle *model.ContactBundle) {
	if page == nil || page.Doc == nil {
		return
	}

	e.extractEmails(page, bundle)
	e.extractPhones(page, bundle)
	e.extractAddresses(page, bundle)
	e.extractSocialLinks(page, bundle)
}

func (e *Extractor) extractEmails(page *fetch.Page, bundle *model.ContactBundle) {
	text := pageText(page)
	for _, match := range emailPattern.FindAllString(text, -1) {
		if len(match) >= maxEmailLen {
			continue
		}
		lower := strings.ToLower(match)
		if hasImageSuffix(lower) {
			continue
		}
		bundle.AddEmail(lower)
	}
}

func (e *Extractor) extractSocialLinks(page *fetch.Page, bundle *model.ContactBundle) {
	base, err := url.Parse(page.URL)
	if err != nil {
		return
	}
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
		absolute := base.ResolveReference(ref).String()
		if e.classifier.IsSocial(absolute) {
			bundle.AddSocialLink(absolute)
		}
	})
}

// pageText returns the page's visible text with element boundaries
// collapsed to single spaces.
func pageText(page *fetch.Page) string {
	var parts []string
	for _, n := range page.Doc.Selection.Nodes {
		if t := nodeText(n); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func hasImageSuffix(s string) bool {
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
