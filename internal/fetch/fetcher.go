// Package fetch retrieves and parses web pages for the resolution pipeline.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/contact-scout/internal/config"
	"github.com/sells-group/contact-scout/internal/resilience"
)

// softBodyThreshold is the minimum body size at which an error status code
// is still treated as a usable page. Some sites return 403/404 on pages
// that render fine in a browser.
const softBodyThreshold = 500

// Page is a fetched and parsed HTML page. Body holds the raw bytes the
// document was parsed from so the page cache can persist them.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Doc        *goquery.Document
}

// Fetcher retrieves a parsed page for a URL. Implementations return an
// error for hard failures; callers in the pipeline recover those as empty
// contributions rather than propagating them.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTPFetcher implements Fetcher over net/http with rate limiting and
// retry on transient failures.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     config.FetchConfig
	retry   resilience.RetryConfig
}

// NewHTTPFetcher builds a fetcher from configuration.
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 4
	}
	retryCfg := resilience.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}
	retryCfg.OnRetry = resilience.RetryLogger("fetch page")

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.Timeout(),
				}).DialContext,
				TLSHandshakeTimeout: cfg.Timeout(),
			},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
		retry:   retryCfg,
	}
}

// Fetch retrieves and parses the page at url. A non-2xx status whose body
// is still substantial is treated as a soft success.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	return resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*Page, error) {
		return f.fetchOnce(ctx, url)
	})
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: create request for %s", url)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: execute request for %s", url)
	}
	defer resp.Body.Close() //nolint:errcheck

	maxBody := f.cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 * 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body for %s", url)
	}

	if resp.StatusCode >= 400 {
		if len(body) > softBodyThreshold {
			// Soft failure: error status with substantial content.
			zap.L().Warn("fetch: proceeding with soft failure page",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Int("body_bytes", len(body)),
			)
		} else {
			err := eris.Errorf("fetch: status %d for %s", resp.StatusCode, url)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse html for %s", url)
	}

	zap.L().Debug("fetch: page retrieved",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Page{
		URL:        url,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
		Doc:        doc,
	}, nil
}
