package model

// Profile holds the public metadata returned for a social handle.
type Profile struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Biography   string `json:"biography"`
	ExternalURL string `json:"external_url"`
	Followers   int64  `json:"followers"`
	Following   int64  `json:"following"`
	Posts       int64  `json:"posts"`
	IsBusiness  bool   `json:"is_business"`
	IsPrivate   bool   `json:"is_private"`
	IsVerified  bool   `json:"is_verified"`

	// BioEmail is the first email address found in the biography text,
	// when present. It is pinned to the front of the email pool.
	BioEmail string `json:"bio_email,omitempty"`
}

// ContactPerson is a resolved decision maker.
type ContactPerson struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Person is a (name, title) candidate from a professional-network source.
type Person struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// CompanyPage holds facts parsed from a professional-network company page.
type CompanyPage struct {
	URL           string   `json:"url"`
	EmployeeCount string   `json:"employee_count,omitempty"`
	FollowerCount string   `json:"follower_count,omitempty"`
	About         string   `json:"about,omitempty"`
	Headquarters  string   `json:"headquarters,omitempty"`
	People        []Person `json:"people,omitempty"`
}

// ResolvedProfile is the final output of entity resolution. It is derived,
// read-only, and recomputed fresh per request.
type ResolvedProfile struct {
	Handle         string         `json:"handle"`
	Profile        Profile        `json:"profile"`
	PrimaryWebsite string         `json:"primary_website,omitempty"`
	PrimaryEmail   string         `json:"primary_email,omitempty"`
	ContactPerson  *ContactPerson `json:"contact_person,omitempty"`
	SocialLinks    []string       `json:"social_links,omitempty"`
	WebsiteLinks   []string       `json:"website_links,omitempty"`
	Bundle         *ContactBundle `json:"bundle"`
	Company        *CompanyPage   `json:"company,omitempty"`
}
