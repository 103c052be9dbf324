package model

import (
	"math"
	"time"
)

// CrawlSummary is the final, immutable result of one crawl run.
// It is the only value the engine hands to reporting and persistence.
//
// Design decision: HasIssues and HasWarnings are stored rather than
// computed on demand so that the serialized form is self-contained;
// automation reading the JSON report does not need to inspect the
// issue arrays to determine the overall status.
type CrawlSummary struct {
	// BaseURL is the normalized starting URL of the crawl.
	BaseURL string `json:"base_url"`

	// CheckedPages is the number of internal pages visited.
	CheckedPages int `json:"checked_pages"`

	// CheckedLinks is the number of distinct hyperlink targets checked.
	CheckedLinks int `json:"checked_links"`

	// CheckedImages is the number of distinct image URLs checked.
	CheckedImages int `json:"checked_images"`

	// DurationSeconds is the wall-clock crawl duration, rounded to
	// two decimal places.
	DurationSeconds float64 `json:"duration_seconds"`

	// HasIssues is true iff Issues is non-empty.
	HasIssues bool `json:"has_issues"`

	// HasWarnings is true iff Warnings is non-empty after the
	// engine's suppression rule has been applied.
	HasWarnings bool `json:"has_warnings"`

	// Issues lists hard defects in the order they were found.
	Issues []Issue `json:"issues"`

	// Warnings lists informational warnings in the order they were
	// found. May be empty even if warnings occurred during the run;
	// see the engine's suppression rule.
	Warnings []Issue `json:"warnings"`

	// FinishedAt is the time the crawl completed.
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlSummary assembles a summary from a finished crawl.
// The issue and warning slices are normalized to be non-nil so that
// JSON output always contains arrays, never null.
func NewCrawlSummary(baseURL string, pages, links, images int, duration time.Duration, issues, warnings []Issue) *CrawlSummary {
	if issues == nil {
		issues = make([]Issue, 0)
	}
	if warnings == nil {
		warnings = make([]Issue, 0)
	}

	return &CrawlSummary{
		BaseURL:         baseURL,
		CheckedPages:    pages,
		CheckedLinks:    links,
		CheckedImages:   images,
		DurationSeconds: math.Round(duration.Seconds()*100) / 100,
		HasIssues:       len(issues) > 0,
		HasWarnings:     len(warnings) > 0,
		Issues:          issues,
		Warnings:        warnings,
		FinishedAt:      time.Now(),
	}
}

// CountByKind returns the number of issues and warnings of the given kind.
func (s *CrawlSummary) CountByKind(kind IssueKind) int {
	count := 0
	for _, issue := range s.Issues {
		if issue.Kind == kind {
			count++
		}
	}
	for _, warning := range s.Warnings {
		if warning.Kind == kind {
			count++
		}
	}
	return count
}
