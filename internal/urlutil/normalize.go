package urlutil

import (
	"net/url"
	"strings"
)

// Normalize rewrites a URL into the canonical form used as a crawl
// deduplication key: the fragment is dropped and the host is lowercased,
// while the path and query string are preserved verbatim.
//
// Non-HTTP(S) URLs (mailto:, tel:, javascript:, ...) are returned
// unchanged; callers must filter those out before using the result as a
// crawl or check target. Unparseable input is likewise returned unchanged.
//
// Design decision: The path is deliberately left untouched, so "/foo" and
// "/foo/" remain distinct keys. Unifying trailing slashes would merge
// pages that some servers treat as different resources.
func Normalize(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	// url.Parse lowercases the scheme, so "HTTP://..." matches here.
	if u.Scheme != "http" && u.Scheme != "https" {
		return rawURL
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

// IsHTTP reports whether the URL uses the http or https scheme.
// Only such URLs are valid crawl and check targets.
func IsHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Host returns the lowercased hostname of the URL, without port.
// Returns the empty string if the URL cannot be parsed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
