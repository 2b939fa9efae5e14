package model

// CachedPage is one fetched page body held in the page cache.
type CachedPage struct {
	URL  string
	Body []byte
}
