package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPhone_HigherScoreWins(t *testing.T) {
	b := NewContactBundle()
	b.AddPhone(PhoneCandidate{Number: "+1 212-555-0123", Label: "Phone", Score: 5})
	b.AddPhone(PhoneCandidate{Number: "+1 212-555-0123", Label: "Main Office", Score: 12})

	require.Len(t, b.Phones, 1)
	assert.Equal(t, 12, b.Phones[0].Score)
	assert.Equal(t, "Main Office", b.Phones[0].Label)
}

func TestAddPhone_TieKeepsExisting(t *testing.T) {
	b := NewContactBundle()
	b.AddPhone(PhoneCandidate{Number: "+1 212-555-0123", Label: "First", Score: 5})
	b.AddPhone(PhoneCandidate{Number: "+1 212-555-0123", Label: "Second", Score: 5})

	require.Len(t, b.Phones, 1)
	assert.Equal(t, "First", b.Phones[0].Label)
}

func TestAddPhone_LowerScoreIgnored(t *testing.T) {
	b := NewContactBundle()
	b.AddPhone(PhoneCandidate{Number: "+1 212-555-0123", Label: "Main Office", Score: 10})
	b.AddPhone(PhoneCandidate{Number: "+1 212-555-0123", Label: "Footer", Score: 0})

	require.Len(t, b.Phones, 1)
	assert.Equal(t, 10, b.Phones[0].Score)
	assert.Equal(t, "Main Office", b.Phones[0].Label)
}

func TestAddEmail_Dedup(t *testing.T) {
	b := NewContactBundle()
	b.AddEmail("info@acme.com")
	b.AddEmail("info@acme.com")
	b.AddEmail("")

	assert.Equal(t, []string{"info@acme.com"}, b.Emails)
}

func TestScraped(t *testing.T) {
	b := NewContactBundle()
	assert.False(t, b.Scraped("https://acme.com"))

	b.RecordPage("https://acme.com")
	b.RecordPage("https://acme.com")

	assert.True(t, b.Scraped("https://acme.com"))
	assert.Len(t, b.ScrapedPages, 1)
}

func TestMerge_Idempotent(t *testing.T) {
	a := &ContactBundle{
		Phones:      []PhoneCandidate{{Number: "+1 212-555-0123", Score: 10}},
		Emails:      []string{"info@acme.com"},
		Addresses:   []string{"123 Main St Springfield, IL 62704"},
		SocialLinks: []string{"https://www.instagram.com/acme"},
	}
	other := &ContactBundle{
		Phones: []PhoneCandidate{{Number: "+1 212-555-0123", Score: 10}},
		Emails: []string{"info@acme.com"},
	}

	a.Merge(other)
	a.Merge(other)

	assert.Len(t, a.Phones, 1)
	assert.Len(t, a.Emails, 1)
	assert.Len(t, a.Addresses, 1)
	assert.Len(t, a.SocialLinks, 1)
}

func TestMerge_OrderIndependent(t *testing.T) {
	mk := func() (*ContactBundle, *ContactBundle) {
		x := &ContactBundle{
			Phones: []PhoneCandidate{{Number: "+1 212-555-0123", Label: "Phone", Score: 5}},
			Emails: []string{"info@acme.com"},
		}
		y := &ContactBundle{
			Phones: []PhoneCandidate{{Number: "+1 212-555-0123", Label: "Main Office", Score: 15}},
			Emails: []string{"sales@acme.com"},
		}
		return x, y
	}

	x1, y1 := mk()
	x1.Merge(y1)

	x2, y2 := mk()
	y2.Merge(x2)

	require.Len(t, x1.Phones, 1)
	require.Len(t, y2.Phones, 1)
	assert.Equal(t, x1.Phones[0], y2.Phones[0])
	assert.Equal(t, 15, x1.Phones[0].Score)
	assert.ElementsMatch(t, x1.Emails, y2.Emails)
}

func TestMerge_Nil(t *testing.T) {
	b := NewContactBundle()
	b.Merge(nil)
	assert.Empty(t, b.Emails)
}

func TestSortPhones_StableDescending(t *testing.T) {
	b := &ContactBundle{
		Phones: []PhoneCandidate{
			{Number: "+1 212-555-0100", Score: 0},
			{Number: "+1 212-555-0101", Score: 15},
			{Number: "+1 212-555-0102", Score: 5},
			{Number: "+1 212-555-0103", Score: 5},
		},
	}
	b.SortPhones()

	require.Len(t, b.Phones, 4)
	assert.Equal(t, "+1 212-555-0101", b.Phones[0].Number)
	// Equal scores keep their original relative order.
	assert.Equal(t, "+1 212-555-0102", b.Phones[1].Number)
	assert.Equal(t, "+1 212-555-0103", b.Phones[2].Number)
	assert.Equal(t, "+1 212-555-0100", b.Phones[3].Number)
}

func TestPinEmail(t *testing.T) {
	b := &ContactBundle{Emails: []string{"info@acme.com", "bio@acme.com"}}
	b.PinEmail("bio@acme.com")
	assert.Equal(t, []string{"bio@acme.com", "info@acme.com"}, b.Emails)

	b.PinEmail("new@acme.com")
	assert.Equal(t, []string{"new@acme.com", "bio@acme.com", "info@acme.com"}, b.Emails)

	b.PinEmail("")
	assert.Equal(t, []string{"new@acme.com", "bio@acme.com", "info@acme.com"}, b.Emails)
}
