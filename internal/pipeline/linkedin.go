package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
)

// ErrAuthwall means the public company page redirected to a login or
// authwall URL, so no public content was served.
var ErrAuthwall = eris.New("linkedin: authwall redirect")

const aboutMaxLen = 500

var (
	employeeCountPattern = regexp.MustCompile(`(?i)[\d,]+\+?\s+employees`)
	viewAllPattern       = regexp.MustCompile(`(?i)view all.*employees`)
	followerCountPattern = regexp.MustCompile(`(?i)[\d,]+\s+followers`)
)

// CompanyParser extracts public facts from a professional-network company
// page: headcount, follower count, an about blurb, headquarters, and the
// people listed with their titles. Public pages carry no stable CSS
// classes, so everything leans on text-pattern searches.
type CompanyParser struct {
	fetcher fetch.Fetcher
}

func NewCompanyParser(fetcher fetch.Fetcher) *CompanyParser {
	return &CompanyParser{fetcher: fetcher}
}

// Parse fetches url and returns whatever company facts the public page
// exposes. An authwall redirect returns ErrAuthwall.
func (p *CompanyParser) Parse(ctx context.Context, url string) (*model.CompanyPage, error) {
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: fetch company page")
	}
	if isAuthwall(page.FinalURL) {
		zap.L().Warn("linkedin: hit authwall, public access blocked", zap.String("url", url))
		return nil, ErrAuthwall
	}

	company := &model.CompanyPage{URL: url}
	text := pageText(page)

	company.EmployeeCount = strings.TrimSpace(employeeCountPattern.FindString(text))
	if company.EmployeeCount == "" {
		page.Doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			label := strings.TrimSpace(sel.Text())
			if viewAllPattern.MatchString(label) {
				label = strings.ReplaceAll(label, "View all", "")
				label = strings.ReplaceAll(label, "employees", "")
				company.EmployeeCount = strings.TrimSpace(label)
				return false
			}
			return true
		})
	}

	company.FollowerCount = strings.TrimSpace(followerCountPattern.FindString(text))
	company.About = parseAbout(page.Doc)
	company.Headquarters = parseHeadquarters(page.Doc)
	company.People = parsePeople(page.Doc)

	return company, nil
}

func isAuthwall(finalURL string) bool {
	return strings.Contains(finalURL, "linkedin.com/authwall") ||
		strings.Contains(finalURL, "linkedin.com/login")
}

// parseAbout takes the text around an "About" heading, falling back to
// the OpenGraph description when the section is script-rendered.
func parseAbout(doc *goquery.Document) string {
	var about string
	doc.Find("h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(sel.Text()), "about") {
			return true
		}
		text := strings.TrimSpace(sel.Parent().Text())
		text = strings.ReplaceAll(text, "About us", "")
		text = strings.ReplaceAll(text, "About", "")
		text = strings.TrimSpace(text)
		if len(text) > aboutMaxLen {
			text = text[:aboutMaxLen] + "..."
		}
		about = text
		return false
	})
	if about == "" {
		about = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	return about
}

func parseHeadquarters(doc *goquery.Document) string {
	var hq string
	doc.Find("dt, h3, span, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(sel.Text()), "headquarters") {
			return true
		}
		text := strings.TrimSpace(sel.Parent().Text())
		text = strings.TrimSpace(strings.TrimPrefix(text, "Headquarters"))
		hq = strings.Trim(text, ": ")
		return false
	})
	return hq
}

// parsePeople walks employee cards, identified as list items linking to a
// member profile. The card's first text line is the name and the second
// the title; cards with no title line are kept with an empty title.
func parsePeople(doc *goquery.Document) []model.Person {
	var people []model.Person
	seen := make(map[string]bool)
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		href := sel.Find("a").AttrOr("href", "")
		if !strings.Contains(href, "/in/") {
			return
		}
		if len(sel.Nodes) == 0 {
			return
		}
		lines := nodeLines(sel.Nodes[0])
		if len(lines) == 0 {
			return
		}
		person := model.Person{Name: lines[0]}
		if len(lines) > 1 {
			person.Title = lines[1]
		}
		if person.Name == "" || seen[person.Name] {
			return
		}
		seen[person.Name] = true
		people = append(people, person)
	})
	return people
}
