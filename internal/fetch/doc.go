// Package fetch performs the single-GET URL checks that drive the crawl.
//
// A Fetcher wraps one shared http.Client (connection pool, default
// headers, redirect cap) created once per run. Every fetch returns a
// model.URLCheckResult; failures are represented as data, never as
// errors, so one unreachable URL cannot abort a crawl.
package fetch
