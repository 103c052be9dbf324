// Package database provides SQLite-based storage for crawl run history.
//
// Every finished crawl can be recorded as a row holding the serialized
// CrawlSummary plus denormalized counts for cheap listing. The history
// command reads this store to list audited sites, show past runs, and
// diff the two most recent runs of a site.
//
// We use modernc.org/sqlite (pure Go) so the binary stays cgo-free.
package database
