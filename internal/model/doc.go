// Package model defines the data structures shared across sitecheck.
//
// The central types are:
//   - URLCheckResult: the outcome of a single HTTP fetch
//   - Issue: a reportable problem (or informational warning)
//   - CrawlSummary: the immutable result of one crawl, handed to reporting
//
// All types in this package are plain data with no behavior beyond
// construction and serialization. The crawl engine produces them; the
// report writers and the history database consume them.
package model
