// Package pipeline implements the contact resolution pipeline: aggregator
// link expansion, website enrichment, fact extraction, and entity resolution.
package pipeline

import (
	"net/url"
	"strings"

	"github.com/sells-group/contact-scout/internal/config"
)

// Classifier decides whether a URL belongs to a known link-aggregator
// service and whether it points at a social platform. Hosts are matched
// by fragment containment against the configured tables, which accepts
// subdomain and regional TLD variants at the cost of occasional false
// positives.
type Classifier struct {
	aggregators []string
	platforms   map[string][]string
}

// NewClassifier builds a Classifier from the configured domain tables.
func NewClassifier(cfg config.LinksConfig) *Classifier {
	return &Classifier{
		aggregators: cfg.AggregatorServices,
		platforms:   cfg.SocialPlatforms,
	}
}

// IsAggregator reports whether rawURL points at a link-in-bio service.
// Malformed URLs are never an error; they simply do not match.
func (c *Classifier) IsAggregator(rawURL string) bool {
	host := normalizedHost(rawURL)
	if host == "" {
		return false
	}
	for _, fragment := range c.aggregators {
		if strings.Contains(host, fragment) {
			return true
		}
	}
	return false
}

// IsSocial reports whether rawURL points at a known social platform.
func (c *Classifier) IsSocial(rawURL string) bool {
	_, ok := c.Platform(rawURL)
	return ok
}

// Platform returns the platform name matching rawURL's host, if any.
func (c *Classifier) Platform(rawURL string) (string, bool) {
	host := normalizedHost(rawURL)
	if host == "" {
		return "", false
	}
	for name, fragments := range c.platforms {
		for _, fragment := range fragments {
			if strings.Contains(host, fragment) {
				return name, true
			}
		}
	}
	return "", false
}

// normalizedHost extracts the lowercase host of rawURL with a leading
// "www." stripped. Returns "" when the URL has no parseable host.
func normalizedHost(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
