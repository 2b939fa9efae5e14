// Package model defines the shared data types for the contact resolution pipeline.
package model

import "sort"

// PhoneCandidate is a phone number extracted from a page, with a context
// label and an additive confidence score. The normalized international
// number is the identity key for dedup.
type PhoneCandidate struct {
	Number string `json:"number"`
	Label  string `json:"label"`
	Score  int    `json:"score"`
}

// ContactBundle is the aggregate fact pool for one enrichment run. Phones
// are keyed by normalized number; emails, addresses, and social links use
// exact-string set semantics. ScrapedPages preserves visit order.
type ContactBundle struct {
	Phones       []PhoneCandidate `json:"phones"`
	Emails       []string         `json:"emails"`
	Addresses    []string         `json:"addresses"`
	SocialLinks  []string         `json:"social_links"`
	ScrapedPages []string         `json:"scraped_pages"`
}

// NewContactBundle returns an empty bundle.
func NewContactBundle() *ContactBundle {
	return &ContactBundle{}
}

// HasPhone reports whether the bundle already contains the normalized number.
func (b *ContactBundle) HasPhone(number string) bool {
	for _, p := range b.Phones {
		if p.Number == number {
			return true
		}
	}
	return false
}

// AddPhone adds a candidate, keeping the highest-scoring entry per number.
// On a tie the existing entry (and its label) wins.
func (b *ContactBundle) AddPhone(c PhoneCandidate) {
	for i, p := range b.Phones {
		if p.Number == c.Number {
			if c.Score > p.Score {
				b.Phones[i] = c
			}
			return
		}
	}
	b.Phones = append(b.Phones, c)
}

// AddEmail adds an email if not already present. Callers are expected to
// lowercase before adding.
func (b *ContactBundle) AddEmail(email string) {
	b.Emails = appendUnique(b.Emails, email)
}

// AddAddress adds an address candidate if not already present.
func (b *ContactBundle) AddAddress(addr string) {
	b.Addresses = appendUnique(b.Addresses, addr)
}

// AddSocialLink adds a social link if not already present.
func (b *ContactBundle) AddSocialLink(link string) {
	b.SocialLinks = appendUnique(b.SocialLinks, link)
}

// RecordPage appends a page URL to the scraped-page log if not already seen.
func (b *ContactBundle) RecordPage(url string) {
	b.ScrapedPages = appendUnique(b.ScrapedPages, url)
}

// Scraped reports whether a page URL has already been recorded.
func (b *ContactBundle) Scraped(url string) bool {
	for _, p := range b.ScrapedPages {
		if p == url {
			return true
		}
	}
	return false
}

// Merge unions other into b. The operation is commutative and idempotent
// over the set-valued fields: duplicate facts are no-ops except for phone
// candidates, where the higher score (and its label) is promoted.
func (b *ContactBundle) Merge(other *ContactBundle) {
	if other == nil {
		return
	}
	for _, p := range other.Phones {
		b.AddPhone(p)
	}
	for _, e := range other.Emails {
		b.AddEmail(e)
	}
	for _, a := range other.Addresses {
		b.AddAddress(a)
	}
	for _, s := range other.SocialLinks {
		b.AddSocialLink(s)
	}
	for _, p := range other.ScrapedPages {
		b.RecordPage(p)
	}
}

// SortPhones orders phones by descending score, stable for equal scores.
func (b *ContactBundle) SortPhones() {
	sort.SliceStable(b.Phones, func(i, j int) bool {
		return b.Phones[i].Score > b.Phones[j].Score
	})
}

// PinEmail moves email to the front of the pool, inserting it if absent.
// Used to give the bio-sourced email top priority during resolution.
func (b *ContactBundle) PinEmail(email string) {
	if email == "" {
		return
	}
	out := []string{email}
	for _, e := range b.Emails {
		if e != email {
			out = append(out, e)
		}
	}
	b.Emails = out
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// LinkSet is the partition of an aggregator page's outbound links.
// WebsiteLinks is capped by configuration, preserving first-seen order.
type LinkSet struct {
	SocialLinks  []string `json:"social_links"`
	WebsiteLinks []string `json:"website_links"`
}
