package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astridwanja/sitecheck/internal/model"
)

// testSummary builds a summary for persistence tests.
func testSummary(baseURL string, issues, warnings []model.Issue) *model.CrawlSummary {
	return model.NewCrawlSummary(baseURL, 3, 10, 2, 1500*time.Millisecond, issues, warnings)
}

// openTestDB opens a CrawlDB in a temporary directory.
func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

// TestOpen verifies database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file and directory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "nested", "data")

		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dir, "sitecheck.db")); err != nil {
			t.Errorf("expected database file to exist: %v", err)
		}
	})

	t.Run("refuses to create when CreateIfNotExists is false", func(t *testing.T) {
		t.Parallel()
		opts := Options{CreateIfNotExists: false}

		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestSaveAndListSites verifies run recording and site listing.
func TestSaveAndListSites(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	t.Run("empty database lists no sites", func(t *testing.T) {
		sites, err := db.ListSites(ctx)
		if err != nil {
			t.Fatalf("failed to list sites: %v", err)
		}
		if len(sites) != 0 {
			t.Errorf("expected no sites, got %v", sites)
		}
	})

	t.Run("saved runs appear sorted and deduplicated", func(t *testing.T) {
		for _, baseURL := range []string{
			"https://b.example.com/",
			"https://a.example.com/",
			"https://b.example.com/",
		} {
			if err := db.SaveSummary(ctx, testSummary(baseURL, nil, nil)); err != nil {
				t.Fatalf("failed to save summary: %v", err)
			}
		}

		sites, err := db.ListSites(ctx)
		if err != nil {
			t.Fatalf("failed to list sites: %v", err)
		}

		want := []string{"https://a.example.com/", "https://b.example.com/"}
		if len(sites) != len(want) {
			t.Fatalf("expected %d sites, got %v", len(want), sites)
		}
		for i, site := range want {
			if sites[i] != site {
				t.Errorf("sites[%d] = %q, want %q", i, sites[i], site)
			}
		}
	})
}

// TestGetRunHistory verifies run metadata retrieval.
func TestGetRunHistory(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	issues := []model.Issue{{Kind: model.KindLinkError, Message: "Link failed to load: HTTP 404"}}

	if err := db.SaveSummary(ctx, testSummary("https://example.com/", nil, nil)); err != nil {
		t.Fatalf("failed to save summary: %v", err)
	}
	if err := db.SaveSummary(ctx, testSummary("https://example.com/", issues, nil)); err != nil {
		t.Fatalf("failed to save summary: %v", err)
	}

	runs, err := db.GetRunHistory(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("failed to get run history: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	// Newest first: the second save carries the issue
	if runs[0].IssueCount != 1 {
		t.Errorf("expected newest run to have 1 issue, got %d", runs[0].IssueCount)
	}
	if runs[1].IssueCount != 0 {
		t.Errorf("expected oldest run to have 0 issues, got %d", runs[1].IssueCount)
	}
	if runs[0].CheckedPages != 3 {
		t.Errorf("expected 3 checked pages, got %d", runs[0].CheckedPages)
	}
	if runs[0].BaseURL != "https://example.com/" {
		t.Errorf("unexpected base URL: %q", runs[0].BaseURL)
	}

	t.Run("unknown site has empty history", func(t *testing.T) {
		runs, err := db.GetRunHistory(ctx, "https://unknown.example.org/")
		if err != nil {
			t.Fatalf("failed to get run history: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}

// TestGetLatestSummaries verifies full-summary retrieval with limits.
func TestGetLatestSummaries(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	warnings := []model.Issue{{
		Kind:    model.KindLinkWarning,
		Message: "LinkedIn returned HTTP 999 (likely bot protection). Please verify manually.",
	}}

	for i := 0; i < 3; i++ {
		var w []model.Issue
		if i == 2 {
			w = warnings
		}
		if err := db.SaveSummary(ctx, testSummary("https://example.com/", nil, w)); err != nil {
			t.Fatalf("failed to save summary: %v", err)
		}
	}

	summaries, err := db.GetLatestSummaries(ctx, "https://example.com/", 2)
	if err != nil {
		t.Fatalf("failed to get summaries: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	// Newest first: the last save carries the warning
	if len(summaries[0].Warnings) != 1 {
		t.Errorf("expected newest summary to have 1 warning, got %d", len(summaries[0].Warnings))
	}
	if summaries[0].BaseURL != "https://example.com/" {
		t.Errorf("unexpected base URL: %q", summaries[0].BaseURL)
	}
	if summaries[0].CheckedLinks != 10 {
		t.Errorf("expected 10 checked links, got %d", summaries[0].CheckedLinks)
	}
}

// TestGetSummaryByID verifies single-run retrieval.
func TestGetSummaryByID(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveSummary(ctx, testSummary("https://example.com/", nil, nil)); err != nil {
		t.Fatalf("failed to save summary: %v", err)
	}

	runs, err := db.GetRunHistory(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("failed to get run history: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	t.Run("existing ID returns summary", func(t *testing.T) {
		summary, err := db.GetSummaryByID(ctx, runs[0].ID)
		if err != nil {
			t.Fatalf("failed to get summary: %v", err)
		}
		if summary == nil {
			t.Fatal("expected a summary")
		}
		if summary.BaseURL != "https://example.com/" {
			t.Errorf("unexpected base URL: %q", summary.BaseURL)
		}
	})

	t.Run("unknown ID returns nil without error", func(t *testing.T) {
		summary, err := db.GetSummaryByID(ctx, 99999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary != nil {
			t.Errorf("expected nil summary, got %+v", summary)
		}
	})
}

// TestParseTimestamp verifies the format fallback chain.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "sqlite default", input: "2026-08-30 12:34:56", valid: true},
		{name: "iso8601 with Z", input: "2026-08-30T12:34:56Z", valid: true},
		{name: "rfc3339", input: "2026-08-30T12:34:56+02:00", valid: true},
		{name: "garbage", input: "not a timestamp", valid: false},
		{name: "empty", input: "", valid: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseTimestamp(tt.input)
			if tt.valid && got.IsZero() {
				t.Errorf("expected %q to parse", tt.input)
			}
			if !tt.valid && !got.IsZero() {
				t.Errorf("expected %q to fail, got %v", tt.input, got)
			}
		})
	}
}
