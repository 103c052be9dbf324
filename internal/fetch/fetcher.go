package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/astridwanja/sitecheck/internal/model"
)

// Fetcher performs single HTTP GET checks against pages, links, and images.
// The underlying client is created once and shared read-only across all
// fetches in a run.
//
// Design decision: We use GET rather than HEAD for link and image checks
// because many servers answer HEAD incorrectly (405s, missing headers).
// The response body is simply not read unless the caller asks for it.
type Fetcher struct {
	// client is the shared HTTP client for the run.
	client *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// maxBodySize caps how much of a page body is read.
	maxBodySize int64

	// headers are extra headers sent with every request, e.g. auth
	// headers for a staging environment.
	headers map[string]string

	// transport overrides the client's transport; nil uses the default.
	transport http.RoundTripper
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the number of body bytes read for page fetches.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithTransport overrides the HTTP transport. Tests use this to route
// requests for external hosts to local fixtures.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// DefaultUserAgent identifies sitecheck in HTTP requests.
const DefaultUserAgent = "astridwanja-website-tester/1.0 (+https://github.com/astridwanja)"

// DefaultMaxBodySize limits page bodies to 5MB. Sufficient for any HTML
// page while preventing memory exhaustion from unexpected responses.
const DefaultMaxBodySize = 5 * 1024 * 1024

// MaxRedirects caps redirect chains. Generous enough for real sites,
// small enough to break redirect loops.
const MaxRedirects = 10

// NewFetcher creates a Fetcher whose requests time out after the given
// duration and follow at most MaxRedirects redirects.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout:   timeout,
		Transport: f.transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", MaxRedirects)
			}
			return nil
		},
	}

	return f
}

// Fetch performs a single GET against the URL and reports the outcome.
//
// When wantBody is true (page fetches) the result's Detail is the decoded
// response body, to be handed to the link/image extractor. When false
// (link and image checks) Detail is the Content-Type header; image checks
// classify it, link checks ignore it.
//
// Fetch never returns an error. HTTP statuses outside [200, 400) yield
// OK=false with Detail "HTTP <status>"; transport failures (DNS, timeout,
// connection reset, TLS) yield OK=false with a zero StatusCode and the
// underlying error message as Detail.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, wantBody bool) model.URLCheckResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.URLCheckResult{
			URL:     rawURL,
			Detail:  err.Error(),
			Elapsed: time.Since(start),
		}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for name, value := range f.headers {
		req.Header.Set(name, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return model.URLCheckResult{
			URL:     rawURL,
			Detail:  err.Error(),
			Elapsed: time.Since(start),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return model.URLCheckResult{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("HTTP %d", resp.StatusCode),
			Elapsed:    time.Since(start),
		}
	}

	detail := resp.Header.Get("Content-Type")
	if wantBody {
		detail = f.readBody(resp)
	}

	return model.URLCheckResult{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		OK:         true,
		Detail:     detail,
		Elapsed:    time.Since(start),
	}
}

// readBody reads the response body up to maxBodySize, decoding it to
// UTF-8 based on the declared charset. Falls back to the raw bytes when
// the charset is unknown; a read error yields whatever was read so far.
func (f *Fetcher) readBody(resp *http.Response) string {
	limited := io.LimitReader(resp.Body, f.maxBodySize)

	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = limited
	}

	body, _ := io.ReadAll(reader) //nolint:errcheck // Partial bodies still yield usable link sets
	return string(body)
}
