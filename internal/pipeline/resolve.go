package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/model"
	"github.com/sells-group/contact-scout/internal/profile"
	"github.com/sells-group/contact-scout/pkg/google"
)

// titleKeywords is the decision-maker priority order. Earlier keywords
// outrank later ones regardless of where the candidate sits in the list.
var titleKeywords = []string{
	"owner",
	"founder",
	"ceo",
	"chief executive officer",
	"president",
	"director",
}

// ProfileResolver drives the full pipeline: profile metadata, bio-link
// expansion, website enrichment, supplemental backfill, company-page
// parsing, and final entity resolution.
type ProfileResolver struct {
	source       profile.Source
	classifier   *Classifier
	aggregator   *AggregatorResolver
	enricher     *Enricher
	supplementer *Supplementer
	company      *CompanyParser
	search       google.Client
}

func NewProfileResolver(
	source profile.Source,
	classifier *Classifier,
	aggregator *AggregatorResolver,
	enricher *Enricher,
	supplementer *Supplementer,
	company *CompanyParser,
) *ProfileResolver {
	return &ProfileResolver{
		source:       source,
		classifier:   classifier,
		aggregator:   aggregator,
		enricher:     enricher,
		supplementer: supplementer,
		company:      company,
	}
}

// WithSearch enables the web-search fallback for finding a company page
// when none of the collected links point at one.
func (r *ProfileResolver) WithSearch(search google.Client) *ProfileResolver {
	r.search = search
	return r
}

// Resolve runs the pipeline for one handle. profile.ErrNotFound is the
// only terminal error; everything downstream of profile retrieval is
// best-effort and degrades to an emptier result instead of failing.
func (r *ProfileResolver) Resolve(ctx context.Context, handle string) (*model.ResolvedProfile, error) {
	return r.ResolveWithProgress(ctx, handle, nil)
}

// ResolveWithProgress runs the pipeline and reports phase transitions
// through onPhase as the run moves past profile retrieval into website
// enrichment. A nil onPhase disables reporting.
func (r *ProfileResolver) ResolveWithProgress(ctx context.Context, handle string, onPhase func(model.RunStatus)) (*model.ResolvedProfile, error) {
	prof, err := r.source.GetProfile(ctx, handle)
	if err != nil {
		if eris.Is(err, profile.ErrNotFound) {
			return nil, err
		}
		return nil, eris.Wrapf(err, "resolve: get profile %q", handle)
	}
	prof.BioEmail = profile.BioEmail(prof.Biography)

	zap.L().Info("resolve: profile retrieved",
		zap.String("handle", handle),
		zap.String("external_url", prof.ExternalURL),
		zap.Int64("followers", prof.Followers),
	)

	if onPhase != nil {
		onPhase(model.RunStatusEnriching)
	}

	links := r.expandBioLink(ctx, prof.ExternalURL)

	bundle := r.enricher.EnrichAll(ctx, links.WebsiteLinks)
	for _, social := range links.SocialLinks {
		bundle.AddSocialLink(social)
	}
	if prof.BioEmail != "" {
		bundle.AddEmail(prof.BioEmail)
		bundle.PinEmail(prof.BioEmail)
	}

	if r.supplementer.Needed(bundle) {
		r.supplementer.Supplement(ctx, bundle)
	}

	resolved := &model.ResolvedProfile{
		Handle:       handle,
		Profile:      *prof,
		SocialLinks:  links.SocialLinks,
		WebsiteLinks: links.WebsiteLinks,
		Bundle:       bundle,
	}

	resolved.PrimaryWebsite = r.primaryWebsite(links.WebsiteLinks, prof.ExternalURL)
	resolved.PrimaryEmail = BestEmail(bundle.Emails, resolved.PrimaryWebsite)

	companyURL := findCompanyLink(bundle.SocialLinks, links.WebsiteLinks)
	if companyURL == "" {
		companyURL = r.searchCompanyLink(ctx, prof)
	}
	if companyURL != "" {
		company, err := r.company.Parse(ctx, companyURL)
		if err != nil {
			zap.L().Warn("resolve: company page parse failed",
				zap.String("url", companyURL),
				zap.Error(err),
			)
		} else {
			resolved.Company = company
			resolved.ContactPerson = BestContactPerson(company.People)
		}
	}

	return resolved, nil
}

// expandBioLink turns the profile's external URL into a link set. An
// aggregator URL is resolved through its page; a social URL contributes
// itself as a social link; anything else is a direct website link.
func (r *ProfileResolver) expandBioLink(ctx context.Context, externalURL string) model.LinkSet {
	if externalURL == "" {
		zap.L().Info("resolve: profile has no bio link")
		return model.LinkSet{}
	}
	switch {
	case r.classifier.IsAggregator(externalURL):
		zap.L().Info("resolve: bio link is an aggregator page", zap.String("url", externalURL))
		return r.aggregator.Resolve(ctx, externalURL)
	case r.classifier.IsSocial(externalURL):
		return model.LinkSet{SocialLinks: []string{externalURL}}
	default:
		return model.LinkSet{WebsiteLinks: []string{externalURL}}
	}
}

// primaryWebsite picks the first resolved website link that is neither an
// aggregator nor a known social domain, falling back to the bio link
// itself under the same test.
func (r *ProfileResolver) primaryWebsite(websiteLinks []string, externalURL string) string {
	for _, link := range websiteLinks {
		if !r.classifier.IsAggregator(link) && !r.classifier.IsSocial(link) {
			return link
		}
	}
	if externalURL != "" && !r.classifier.IsAggregator(externalURL) && !r.classifier.IsSocial(externalURL) {
		return externalURL
	}
	return ""
}

// BestEmail prefers a candidate whose domain part contains the primary
// website's host. With no match, or no primary website, the first
// candidate wins; a bio-sourced email is pinned to the front upstream,
// so it takes priority here.
func BestEmail(emails []string, primaryWebsite string) string {
	if len(emails) == 0 {
		return ""
	}
	if host := hostOf(primaryWebsite); host != "" {
		for _, email := range emails {
			at := strings.LastIndex(email, "@")
			if at >= 0 && strings.Contains(email[at+1:], host) {
				return email
			}
		}
	}
	return emails[0]
}

// BestContactPerson scans titleKeywords in priority order across all
// candidates; the first keyword with any match decides. With no keyword
// match the first candidate is returned, and an empty list resolves to
// no contact person.
func BestContactPerson(people []model.Person) *model.ContactPerson {
	if len(people) == 0 {
		return nil
	}
	for _, keyword := range titleKeywords {
		for _, person := range people {
			if person.Title != "" && strings.Contains(strings.ToLower(person.Title), keyword) {
				return &model.ContactPerson{Name: person.Name, Title: person.Title}
			}
		}
	}
	first := people[0]
	return &model.ContactPerson{Name: first.Name, Title: first.Title}
}

// searchCompanyLink queries the search API for the profile's company
// page when the crawl surfaced none. The biography's location line, when
// present, narrows the query.
func (r *ProfileResolver) searchCompanyLink(ctx context.Context, prof *model.Profile) string {
	if r.search == nil || prof.FullName == "" {
		return ""
	}

	query := fmt.Sprintf(`site:linkedin.com/company %q`, prof.FullName)
	if location := bioLocation(prof.Biography); location != "" {
		query += fmt.Sprintf(" %q", location)
	}

	zap.L().Info("resolve: searching for company page", zap.String("query", query))
	resp, err := r.search.Search(ctx, query)
	if err != nil {
		zap.L().Warn("resolve: company page search failed", zap.Error(err))
		return ""
	}
	for _, item := range resp.Items {
		if strings.Contains(item.Link, "linkedin.com/company") {
			return item.Link
		}
	}
	return ""
}

// bioLocation pulls a location hint out of the biography, looking for a
// "based in" line or a pin emoji prefix.
func bioLocation(biography string) string {
	for _, line := range strings.Split(biography, "\n") {
		if strings.Contains(strings.ToLower(line), "based in") || strings.Contains(line, "\U0001F4CD") {
			cleaned := strings.NewReplacer("Based in", "", "based in", "", "\U0001F4CD", "").Replace(line)
			if cleaned = strings.TrimSpace(cleaned); cleaned != "" {
				return cleaned
			}
		}
	}
	return ""
}

func findCompanyLink(socialLinks, websiteLinks []string) string {
	for _, link := range socialLinks {
		if strings.Contains(link, "linkedin.com/company") {
			return link
		}
	}
	for _, link := range websiteLinks {
		if strings.Contains(link, "linkedin.com/company") {
			return link
		}
	}
	return ""
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
