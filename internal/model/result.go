package model

import "time"

// URLCheckResult is the outcome of a single HTTP fetch attempt.
// A result is created fresh per fetch and never mutated afterwards.
//
// Design decision: Failures are represented as data rather than errors
// because a single unreachable link must not abort the crawl. The fetcher
// never returns an error for a failed check; it returns a result with
// OK=false and a human-readable Detail.
type URLCheckResult struct {
	// URL is the target that was fetched.
	URL string

	// StatusCode is the HTTP status code. Zero means no status was
	// received (transport-level failure: DNS, timeout, connection reset).
	StatusCode int

	// OK is true iff a status code was received and it is in [200, 400).
	OK bool

	// Detail depends on the fetch mode and outcome:
	//   - page fetch, success: the response body text
	//   - link/image fetch, success: the Content-Type response header
	//   - failure: a human-readable error string (e.g. "HTTP 404")
	Detail string

	// Elapsed is the wall-clock time the fetch took.
	Elapsed time.Duration
}

// IssueKind classifies a reportable problem.
type IssueKind string

// Issue kinds. KindLinkWarning is reserved exclusively for the LinkedIn
// HTTP-999 bot-protection case; everything else is a hard issue.
const (
	// KindPageError means an internal page failed to load.
	KindPageError IssueKind = "page_error"

	// KindLinkError means a hyperlink target failed to resolve.
	KindLinkError IssueKind = "link_error"

	// KindImageError means an image failed to load or did not return
	// an image content type.
	KindImageError IssueKind = "image_error"

	// KindLinkWarning means LinkedIn answered HTTP 999, a known
	// bot-protection false positive rather than a real defect.
	KindLinkWarning IssueKind = "link_warning"
)

// Issue is a reportable problem found during a crawl.
type Issue struct {
	// Kind classifies the issue.
	Kind IssueKind `json:"kind"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Source is the referring page, if known.
	Source string `json:"source,omitempty"`

	// Target is the URL the issue is about, if distinct from Source.
	Target string `json:"target,omitempty"`

	// StatusCode is the HTTP status associated with the issue.
	// Zero means no status was received and the field is omitted.
	StatusCode int `json:"status_code,omitempty"`
}
