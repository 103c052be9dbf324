package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/astridwanja/sitecheck/internal/fetch"
	"github.com/astridwanja/sitecheck/internal/model"
	"github.com/astridwanja/sitecheck/internal/urlutil"
)

// linkedInBotStatus is the synthetic status LinkedIn returns to automated
// clients. It signals bot protection, not a broken link.
const linkedInBotStatus = 999

// Engine drives one breadth-first crawl of a site.
//
// The engine owns all crawl state for a run: the frontier, the seen set,
// and the memoization maps for pages, links, and images. State is never
// shared across runs; create a new Engine per crawl.
//
// Design decision: Page visits are strictly sequential breadth-first, but
// the independent link/image checks within a page fan out over a bounded
// worker pool. Workers write into preallocated result slots and the
// engine merges them single-threaded afterwards, so the memoization maps
// and issue lists have exactly one writer.
type Engine struct {
	// baseURL is the normalized starting URL.
	baseURL string

	// domains is the internal-domain set; members expand the frontier.
	domains *urlutil.DomainSet

	// fetcher performs all HTTP checks through one shared client.
	fetcher *fetch.Fetcher

	// logger receives crawl progress at debug level.
	logger *slog.Logger

	// workers bounds concurrent link/image checks within a page.
	// 1 means fully sequential crawling.
	workers int

	// frontier is the FIFO queue of pages awaiting a visit.
	frontier []string

	// seen holds every page URL ever enqueued, preventing re-enqueue.
	seen map[string]struct{}

	// visitedPages, checkedLinks, and checkedImages memoize fetch
	// results per URL. A URL referenced by N pages is fetched once.
	visitedPages  map[string]model.URLCheckResult
	checkedLinks  map[string]model.URLCheckResult
	checkedImages map[string]model.URLCheckResult

	// issues and warnings accumulate in discovery order.
	issues   []model.Issue
	warnings []model.Issue

	// extraDomains holds additional internal hostnames; consulted only
	// during construction when the domain set is built.
	extraDomains []string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for crawl progress.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithWorkers bounds concurrent link/image checks within a page.
// Values below 1 are treated as 1 (sequential).
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithExtraDomains adds hostnames treated as internal to the crawl
// beyond the base host and its www-toggled variant.
func WithExtraDomains(hosts []string) EngineOption {
	return func(e *Engine) {
		e.extraDomains = hosts
	}
}

// NewEngine validates the base URL and prepares a crawl.
// An unparseable or non-HTTP(S) base URL is the one fatal error in the
// crawler's contract; everything after this point is failure-as-data.
func NewEngine(fetcher *fetch.Fetcher, baseURL string, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		fetcher:       fetcher,
		logger:        slog.Default(),
		workers:       1,
		seen:          make(map[string]struct{}),
		visitedPages:  make(map[string]model.URLCheckResult),
		checkedLinks:  make(map[string]model.URLCheckResult),
		checkedImages: make(map[string]model.URLCheckResult),
		issues:        make([]model.Issue, 0),
		warnings:      make([]model.Issue, 0),
	}

	for _, opt := range opts {
		opt(e)
	}

	normalized := urlutil.Normalize(baseURL)
	if !urlutil.IsHTTP(normalized) {
		return nil, fmt.Errorf("base URL %q is not a valid http(s) URL", baseURL)
	}
	host := urlutil.Host(normalized)
	if host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	e.baseURL = normalized
	e.domains = urlutil.NewDomainSet(host, e.extraDomains)

	return e, nil
}

// Run crawls from the base URL until the frontier is exhausted and
// returns the summary. Run never fails: every fetch problem is recorded
// as an issue or warning. Cancelling the context stops the crawl early
// and returns the summary of the work done so far.
func (e *Engine) Run(ctx context.Context) *model.CrawlSummary {
	start := time.Now()

	e.frontier = append(e.frontier, e.baseURL)
	e.seen[e.baseURL] = struct{}{}

	for len(e.frontier) > 0 {
		select {
		case <-ctx.Done():
			e.logger.Warn("crawl cancelled", "pending", len(e.frontier))
			return e.summarize(time.Since(start))
		default:
		}

		current := e.frontier[0]
		e.frontier = e.frontier[1:]
		e.visitPage(ctx, current)
	}

	return e.summarize(time.Since(start))
}

// visitPage fetches one page, records the result, and checks everything
// the page references.
func (e *Engine) visitPage(ctx context.Context, pageURL string) {
	e.logger.Debug("visiting page", "url", pageURL)

	result := e.fetcher.Fetch(ctx, pageURL, true)
	e.visitedPages[pageURL] = result

	if !result.OK {
		e.issues = append(e.issues, model.Issue{
			Kind:       model.KindPageError,
			Message:    fmt.Sprintf("Failed to load page %s: %s", pageURL, detailOrDefault(result.Detail)),
			Source:     pageURL,
			StatusCode: result.StatusCode,
		})
		// No body to scan; links and images stay unchecked.
		return
	}

	extractor, err := NewExtractor(pageURL)
	if err != nil {
		// Cannot happen for a URL that was just fetched, but a page
		// without an extractor simply contributes no references.
		return
	}
	refs := extractor.Extract(strings.NewReader(result.Detail))

	e.checkLinks(ctx, pageURL, refs.Links)
	e.checkImages(ctx, pageURL, refs.Images)
	e.expandFrontier(refs.Links)
}

// checkLinks verifies every not-yet-checked hyperlink target on a page.
// A failing link becomes a link_error, except LinkedIn's HTTP 999
// bot-protection response, which is downgraded to a warning.
func (e *Engine) checkLinks(ctx context.Context, pageURL string, links []string) {
	pending := make([]string, 0, len(links))
	for _, link := range links {
		if !urlutil.IsHTTP(link) {
			continue
		}
		if _, done := e.checkedLinks[link]; done {
			continue
		}
		pending = append(pending, link)
	}

	for i, result := range e.checkAll(ctx, pending) {
		link := pending[i]
		e.checkedLinks[link] = result
		if result.OK {
			continue
		}

		if result.StatusCode == linkedInBotStatus && urlutil.IsLinkedInHost(urlutil.Host(link)) {
			e.warnings = append(e.warnings, model.Issue{
				Kind:       model.KindLinkWarning,
				Message:    "LinkedIn returned HTTP 999 (likely bot protection). Please verify manually.",
				Source:     pageURL,
				Target:     link,
				StatusCode: result.StatusCode,
			})
			continue
		}

		e.issues = append(e.issues, model.Issue{
			Kind:       model.KindLinkError,
			Message:    fmt.Sprintf("Link failed to load: %s", detailOrDefault(result.Detail)),
			Source:     pageURL,
			Target:     link,
			StatusCode: result.StatusCode,
		})
	}
}

// checkImages verifies every not-yet-checked image on a page. An image
// must both load and actually return an image content type; a soft-404
// page served with status 200 at an image URL is still an issue.
func (e *Engine) checkImages(ctx context.Context, pageURL string, images []string) {
	pending := make([]string, 0, len(images))
	for _, image := range images {
		if !urlutil.IsHTTP(image) {
			continue
		}
		if _, done := e.checkedImages[image]; done {
			continue
		}
		pending = append(pending, image)
	}

	for i, result := range e.checkAll(ctx, pending) {
		image := pending[i]
		e.checkedImages[image] = result

		if !result.OK {
			e.issues = append(e.issues, model.Issue{
				Kind:       model.KindImageError,
				Message:    fmt.Sprintf("Image failed to load: %s", detailOrDefault(result.Detail)),
				Source:     pageURL,
				Target:     image,
				StatusCode: result.StatusCode,
			})
			continue
		}

		if !strings.HasPrefix(result.Detail, "image/") {
			e.issues = append(e.issues, model.Issue{
				Kind:    model.KindImageError,
				Message: "Image URL did not return an image content type.",
				Source:  pageURL,
				Target:  image,
			})
		}
	}
}

// checkAll fetches the given URLs without bodies, fanning out over the
// worker pool. Results are returned in input order; workers never touch
// engine state.
func (e *Engine) checkAll(ctx context.Context, urls []string) []model.URLCheckResult {
	results := make([]model.URLCheckResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	if e.workers == 1 {
		for i, u := range urls {
			results[i] = e.fetcher.Fetch(ctx, u, false)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = e.fetcher.Fetch(ctx, u, false)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers only record results; they never error

	return results
}

// expandFrontier enqueues internal links that have not been seen yet.
// External links were checked above but never expand the crawl; the
// crawl boundary is the site itself, not the web.
func (e *Engine) expandFrontier(links []string) {
	for _, link := range links {
		if !urlutil.IsHTTP(link) {
			continue
		}
		if !e.domains.Contains(urlutil.Host(link)) {
			continue
		}
		if _, enqueued := e.seen[link]; enqueued {
			continue
		}
		e.seen[link] = struct{}{}
		e.frontier = append(e.frontier, link)
	}
}

// summarize builds the immutable crawl summary, applying the warning
// suppression rule: once the run contains any hard link failure, the
// softer LinkedIn warnings are dropped rather than double-reported.
func (e *Engine) summarize(duration time.Duration) *model.CrawlSummary {
	warnings := e.warnings
	for _, issue := range e.issues {
		if issue.Kind == model.KindLinkError {
			warnings = nil
			break
		}
	}

	summary := model.NewCrawlSummary(
		e.baseURL,
		len(e.visitedPages),
		len(e.checkedLinks),
		len(e.checkedImages),
		duration,
		e.issues,
		warnings,
	)

	e.logger.Info("crawl finished",
		"baseURL", summary.BaseURL,
		"pages", summary.CheckedPages,
		"links", summary.CheckedLinks,
		"images", summary.CheckedImages,
		"issues", len(summary.Issues),
		"warnings", len(summary.Warnings),
	)

	return summary
}

// detailOrDefault substitutes a generic message for an empty detail.
func detailOrDefault(detail string) string {
	if detail == "" {
		return "HTTP error"
	}
	return detail
}
