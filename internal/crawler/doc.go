// Package crawler implements the site-health crawl.
//
// The Extractor pulls hyperlink and image references out of fetched HTML.
// The Engine drives the breadth-first traversal: it maintains the frontier
// and visited set, fetches pages through the shared Fetcher, checks every
// distinct link and image exactly once, and classifies failures into
// issues and warnings. The result of a run is a model.CrawlSummary.
//
// A crawl never aborts on fetch failures; every failure becomes an issue
// or a warning. The only fatal condition is an unparseable base URL,
// rejected before the crawl starts.
package crawler
