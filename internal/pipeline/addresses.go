package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
)

// Address line classification. A buffer of consecutive component lines is
// committed only once a state+zip line has been seen, which anchors the
// block as a real postal address rather than a list of labels.
var (
	stateZipPattern = regexp.MustCompile(`\b[A-Z]{2}[,.]?\s+\d{5}(?:-\d{4})?\b`)
	streetPattern   = regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9\s,.]+\s+(?:St|Ave|Rd|Dr|Blvd|Ln|Drive|Street|Avenue|Road|Suite|Ste|Way|Circle|Cir)\b`)
	suitePattern    = regexp.MustCompile(`(?i)(?:Suite|Ste|Unit|Apt)\s+#?\w+`)
	labelPattern    = regexp.MustCompile(`^[A-Za-z\s]+:$`)

	// noisePattern strips boilerplate words that lead into an address
	// block (nav labels, hours, day names) from the committed string.
	noisePattern = regexp.MustCompile(`(?i)(?:Contact|Call|Text|Book Now|Follow|Us|Location|Email|Phone|Hours|Open|Mon|Tue|Wed|Thu|Fri|Sat|Sun).*?[:\-]?`)
)

// Commit thresholds.
const (
	maxAddressLineLen = 150 // lines longer than this terminate the buffer
	minAddressLen     = 10  // committed addresses must exceed this length
)

// addressBuffer accumulates consecutive address-component lines within a
// single block element.
type addressBuffer struct {
	lines       []string
	hasStateZip bool
}

func (b *addressBuffer) add(line string, stateZip bool) {
	b.lines = append(b.lines, line)
	if stateZip {
		b.hasStateZip = true
	}
}

func (b *addressBuffer) reset() {
	b.lines = nil
	b.hasStateZip = false
}

// flush commits the buffered lines as one address candidate if the buffer
// is anchored by a state+zip line and survives noise stripping, then
// resets the buffer.
func (b *addressBuffer) flush(bundle *model.ContactBundle) {
	defer b.reset()
	if len(b.lines) == 0 || !b.hasStateZip {
		return
	}
	addr := strings.TrimSpace(noisePattern.ReplaceAllString(strings.Join(b.lines, " "), ""))
	if len(addr) > minAddressLen {
		bundle.AddAddress(addr)
	}
}

// extractAddresses scans leaf-like block elements line by line, buffering
// consecutive address components and committing a candidate whenever the
// buffer is terminated while anchored by a state+zip line.
func (e *Extractor) extractAddresses(page *fetch.Page, bundle *model.ContactBundle) {
	page.Doc.Find(addressBlockSelector).Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		if directChildElements(node) > maxLeafChildren {
			return
		}
		isAddressElement := node.Data == "address"

		var buf addressBuffer
		for _, line := range nodeLines(node) {
			if len(line) > maxAddressLineLen {
				buf.flush(bundle)
				continue
			}

			component, stateZip := classifyAddressLine(line, isAddressElement)
			if component {
				buf.add(line, stateZip)
			} else {
				buf.flush(bundle)
			}
		}
		buf.flush(bundle)
	})
}

// classifyAddressLine reports whether line is an address component and
// whether it carries the anchoring state+zip pattern. Inside a semantic
// <address> element every line counts as a component.
func classifyAddressLine(line string, isAddressElement bool) (component, stateZip bool) {
	switch {
	case labelPattern.MatchString(line):
		return true, false
	case streetPattern.MatchString(line) && containsDigit(line):
		return true, false
	case suitePattern.MatchString(line):
		return true, false
	case stateZipPattern.MatchString(line):
		return true, true
	case isAddressElement:
		return true, stateZipPattern.MatchString(line)
	default:
		return false, false
	}
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
