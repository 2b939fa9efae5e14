package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-scout/internal/model"
)

const companyPage = `<html><head>
	<meta property="og:description" content="Fallback description">
</head><body>
	<section><h2>About us</h2>We make widgets for small businesses.</section>
	<div>10,001+ employees</div>
	<div>5,230 followers</div>
	<dl><dt>Headquarters</dt><dd>Springfield, Illinois</dd></dl>
	<ul>
		<li><a href="https://www.linkedin.com/in/jane-doe"><div>Jane Doe</div><div>Founder &amp; CEO</div></a></li>
		<li><a href="https://www.linkedin.com/in/bob-jones"><div>Bob Jones</div><div>Marketing Manager</div></a></li>
		<li><a href="https://www.linkedin.com/company/other">Not a person</a></li>
	</ul>
</body></html>`

func TestCompanyParse(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://www.linkedin.com/company/acme": companyPage,
	})
	p := NewCompanyParser(fetcher)

	company, err := p.Parse(context.Background(), "https://www.linkedin.com/company/acme")
	require.NoError(t, err)

	assert.Equal(t, "https://www.linkedin.com/company/acme", company.URL)
	assert.Equal(t, "10,001+ employees", company.EmployeeCount)
	assert.Equal(t, "5,230 followers", company.FollowerCount)
	assert.Equal(t, "We make widgets for small businesses.", company.About)
	assert.Equal(t, "Springfield, Illinois", company.Headquarters)
	assert.Equal(t, []model.Person{
		{Name: "Jane Doe", Title: "Founder & CEO"},
		{Name: "Bob Jones", Title: "Marketing Manager"},
	}, company.People)
}

func TestCompanyParse_AboutFallsBackToMeta(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://www.linkedin.com/company/acme": `<html><head>
			<meta property="og:description" content="Widgets since 1999">
		</head><body><p>nothing else</p></body></html>`,
	})
	p := NewCompanyParser(fetcher)

	company, err := p.Parse(context.Background(), "https://www.linkedin.com/company/acme")
	require.NoError(t, err)

	assert.Equal(t, "Widgets since 1999", company.About)
}

func TestCompanyParse_Authwall(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://www.linkedin.com/company/acme": `<html><body>Sign in</body></html>`,
	})
	fetcher.finalURLs = map[string]string{
		"https://www.linkedin.com/company/acme": "https://www.linkedin.com/authwall?trk=x",
	}
	p := NewCompanyParser(fetcher)

	_, err := p.Parse(context.Background(), "https://www.linkedin.com/company/acme")
	assert.ErrorIs(t, err, ErrAuthwall)
}

func TestCompanyParse_FetchError(t *testing.T) {
	p := NewCompanyParser(newStubFetcher(nil))

	_, err := p.Parse(context.Background(), "https://www.linkedin.com/company/acme")
	assert.Error(t, err)
}

func TestIsAuthwall(t *testing.T) {
	assert.True(t, isAuthwall("https://www.linkedin.com/authwall?trk=x"))
	assert.True(t, isAuthwall("https://www.linkedin.com/login"))
	assert.False(t, isAuthwall("https://www.linkedin.com/company/acme"))
}
