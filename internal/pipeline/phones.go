package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/html"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
)

// Phone score bonuses. All additive; the highest-scoring duplicate wins.
const (
	scoreContactPage  = 10 // page URL contains "contact"
	scoreHeaderFooter = 5  // element sits inside a header or footer region
	scoreLabelKeyword = 5  // label names a main/office/headquarters line
)

// maxLabelLen rejects context text too long to be a phone label.
const maxLabelLen = 50

var (
	// phoneCandidatePattern finds substrings worth handing to the
	// region-aware parser: US-style groupings and international forms.
	phoneCandidatePattern = regexp.MustCompile(`\+?\d{1,3}[\s.\-]?\(?\d{2,4}\)?[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`)

	// digitRunPattern strips long runs of digits and phone punctuation
	// when deriving a label from the element's own text.
	digitRunPattern = regexp.MustCompile(`[()\-.\s\d]{7,}`)

	labelKeywords = []string{"main", "office", "headquarters"}
)

// phoneMatcher validates and formats phone candidates for a default region.
type phoneMatcher struct {
	region string
}

func newPhoneMatcher(region string) *phoneMatcher {
	if region == "" {
		region = "US"
	}
	return &phoneMatcher{region: region}
}

// find returns the normalized international form of every valid phone
// number in text, in first-seen order.
func (m *phoneMatcher) find(text string) []string {
	var numbers []string
	seen := make(map[string]bool)
	for _, candidate := range phoneCandidatePattern.FindAllString(text, -1) {
		num, err := phonenumbers.Parse(candidate, m.region)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			continue
		}
		formatted := phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
		if !seen[formatted] {
			seen[formatted] = true
			numbers = append(numbers, formatted)
		}
	}
	return numbers
}

// extractPhones scans leaf-like block elements for phone numbers, scoring
// each by page and placement context and attaching a nearby label.
func (e *Extractor) extractPhones(page *fetch.Page, bundle *model.ContactBundle) {
	pageIsContact := strings.Contains(strings.ToLower(page.URL), "contact")

	page.Doc.Find(contactBlockSelector).Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		if directChildElements(node) > maxLeafChildren {
			return
		}
		text := nodeText(node)
		if text == "" {
			return
		}

		for _, number := range e.phones.find(text) {
			if bundle.HasPhone(number) {
				continue
			}

			score := 0
			if pageIsContact {
				score += scoreContactPage
			}
			if hasAncestor(node, "header", "footer") {
				score += scoreHeaderFooter
			}

			label := phoneLabel(node, text, number)
			lowerLabel := strings.ToLower(label)
			for _, kw := range labelKeywords {
				if strings.Contains(lowerLabel, kw) {
					score += scoreLabelKeyword
					break
				}
			}

			bundle.AddPhone(model.PhoneCandidate{
				Number: number,
				Label:  label,
				Score:  score,
			})
		}
	})
}

// phoneLabel derives a human label for a number from nearby context,
// trying progressively wider sources until one fits under maxLabelLen:
// the element's own text with the number stripped, the previous sibling,
// the parent's previous sibling, the nearest preceding heading, and
// finally the literal "Phone".
func phoneLabel(node *html.Node, elementText, number string) string {
	own := strings.TrimSpace(strings.ReplaceAll(elementText, number, ""))
	own = strings.TrimSpace(digitRunPattern.ReplaceAllString(own, ""))
	if label := trimLabel(own); label != "" {
		return label
	}

	if prev := prevElementSibling(node); prev != nil {
		if label := trimLabel(nodeText(prev)); label != "" {
			return label
		}
	}

	if node.Parent != nil {
		if prev := prevElementSibling(node.Parent); prev != nil {
			if label := trimLabel(nodeText(prev)); label != "" {
				return label
			}
		}
	}

	if heading := prevHeading(node); heading != nil {
		if label := trimLabel(nodeText(heading)); label != "" {
			return label
		}
	}

	return "Phone"
}

// trimLabel cleans candidate label text and discards it when empty or too
// long to be a label. The length ceiling applies before the punctuation
// trim, so context that only fits once stripped is still rejected.
func trimLabel(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= maxLabelLen {
		return ""
	}
	text = strings.Trim(text, ": -")
	if text == "" {
		return ""
	}
	return text
}
