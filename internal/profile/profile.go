// Package profile retrieves public social-profile metadata for a handle.
package profile

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/config"
	"github.com/sells-group/contact-scout/internal/model"
)

// ErrNotFound indicates the handle does not exist upstream. It is a
// terminal outcome, distinct from a transient fetch failure.
var ErrNotFound = eris.New("profile not found")

// Source retrieves profile metadata for a handle.
type Source interface {
	GetProfile(ctx context.Context, handle string) (*model.Profile, error)
}

var bioEmailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// HTTPSource fetches profile metadata from the public web profile endpoint.
type HTTPSource struct {
	client  *http.Client
	baseURL string
	cfg     config.FetchConfig
}

// NewHTTPSource builds a profile source from fetch configuration.
func NewHTTPSource(cfg config.FetchConfig) *HTTPSource {
	return &HTTPSource{
		client:  &http.Client{Timeout: cfg.Timeout()},
		baseURL: "https://www.instagram.com/api/v1/users/web_profile_info/",
		cfg:     cfg,
	}
}

// WithBaseURL overrides the metadata endpoint (used in tests).
func (s *HTTPSource) WithBaseURL(u string) *HTTPSource {
	s.baseURL = u
	return s
}

// webProfileResponse mirrors the subset of the public endpoint's payload
// the pipeline consumes.
type webProfileResponse struct {
	Data struct {
		User *struct {
			Username     string    `json:"username"`
			FullName     string    `json:"full_name"`
			Biography    string    `json:"biography"`
			ExternalURL  string    `json:"external_url"`
			IsBusiness   bool      `json:"is_business_account"`
			IsPrivate    bool      `json:"is_private"`
			IsVerified   bool      `json:"is_verified"`
			EdgeFollowed edgeCount `json:"edge_followed_by"`
			EdgeFollow   edgeCount `json:"edge_follow"`
			EdgeTimeline edgeCount `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

type edgeCount struct {
	Count int64 `json:"count"`
}

// GetProfile fetches metadata for handle. A leading "@" is tolerated.
func (s *HTTPSource) GetProfile(ctx context.Context, handle string) (*model.Profile, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, eris.New("profile: handle is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?username="+handle, nil)
	if err != nil {
		return nil, eris.Wrap(err, "profile: create request")
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: fetch %s", handle)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("profile: status %d for %s", resp.StatusCode, handle)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, eris.Wrap(err, "profile: read body")
	}

	var parsed webProfileResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrapf(err, "profile: decode response for %s", handle)
	}
	user := parsed.Data.User
	if user == nil {
		return nil, ErrNotFound
	}

	p := &model.Profile{
		Username:    user.Username,
		FullName:    user.FullName,
		Biography:   user.Biography,
		ExternalURL: user.ExternalURL,
		Followers:   user.EdgeFollowed.Count,
		Following:   user.EdgeFollow.Count,
		Posts:       user.EdgeTimeline.Count,
		IsBusiness:  user.IsBusiness,
		IsPrivate:   user.IsPrivate,
		IsVerified:  user.IsVerified,
	}
	p.BioEmail = BioEmail(p.Biography)
	if p.BioEmail != "" {
		zap.L().Info("profile: extracted email from bio",
			zap.String("handle", handle),
			zap.String("email", p.BioEmail),
		)
	}

	return p, nil
}

// BioEmail returns the first email address found in biography text,
// lowercased, or "" when none is present.
func BioEmail(biography string) string {
	match := bioEmailPattern.FindString(biography)
	return strings.ToLower(match)
}
