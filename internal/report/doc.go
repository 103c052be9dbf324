// Package report renders crawl summaries for humans and automation.
//
// Three writers share the Writer interface: JSONWriter for tool
// integration, MarkdownWriter for documentation and CI artifacts, and
// SimpleWriter for terminal display. Rendering is pure formatting of the
// model.CrawlSummary; no decision logic lives here.
package report
