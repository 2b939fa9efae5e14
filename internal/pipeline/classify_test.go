package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAggregator(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://linktr.ee/acme", true},
		{"https://www.linktr.ee/acme", true},
		{"https://beacons.ai/acme", true},
		{"https://acme.com", false},
		{"https://www.instagram.com/acme", false},
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsAggregator(tt.url))
		})
	}
}

func TestPlatform(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		url      string
		platform string
		ok       bool
	}{
		{"https://www.facebook.com/acme", "facebook", true},
		{"https://fb.com/acme", "facebook", true},
		{"https://www.instagram.com/acme/", "instagram", true},
		{"https://x.com/acme", "twitter", true},
		{"https://youtu.be/abc123", "youtube", true},
		{"https://acme.com/facebook", "", false}, // path does not count
		{"https://acme.com", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			name, ok := c.Platform(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.platform, name)
		})
	}
}

func TestIsSocial_SubdomainVariants(t *testing.T) {
	c := testClassifier()
	assert.True(t, c.IsSocial("https://m.facebook.com/acme"))
	assert.True(t, c.IsSocial("https://business.linkedin.com/company/acme"))
	assert.False(t, c.IsSocial("https://acme.com"))
}
