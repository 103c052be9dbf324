package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestNewCrawlSummary verifies summary assembly and the derived
// HasIssues/HasWarnings flags.
func TestNewCrawlSummary(t *testing.T) {
	t.Parallel()

	t.Run("clean run has no flags set", func(t *testing.T) {
		t.Parallel()
		s := NewCrawlSummary("https://example.com", 3, 10, 4, 2*time.Second, nil, nil)

		if s.HasIssues {
			t.Error("expected HasIssues to be false")
		}
		if s.HasWarnings {
			t.Error("expected HasWarnings to be false")
		}
		if s.CheckedPages != 3 || s.CheckedLinks != 10 || s.CheckedImages != 4 {
			t.Errorf("unexpected counts: pages=%d links=%d images=%d",
				s.CheckedPages, s.CheckedLinks, s.CheckedImages)
		}
	})

	t.Run("issues set HasIssues", func(t *testing.T) {
		t.Parallel()
		issues := []Issue{{Kind: KindLinkError, Message: "Link failed to load: HTTP 404"}}
		s := NewCrawlSummary("https://example.com", 1, 1, 0, time.Second, issues, nil)

		if !s.HasIssues {
			t.Error("expected HasIssues to be true")
		}
		if s.HasWarnings {
			t.Error("expected HasWarnings to be false")
		}
	})

	t.Run("warnings set HasWarnings", func(t *testing.T) {
		t.Parallel()
		warnings := []Issue{{Kind: KindLinkWarning, Message: "LinkedIn returned HTTP 999 (likely bot protection). Please verify manually."}}
		s := NewCrawlSummary("https://example.com", 1, 1, 0, time.Second, nil, warnings)

		if s.HasIssues {
			t.Error("expected HasIssues to be false")
		}
		if !s.HasWarnings {
			t.Error("expected HasWarnings to be true")
		}
	})

	t.Run("nil slices become empty arrays", func(t *testing.T) {
		t.Parallel()
		s := NewCrawlSummary("https://example.com", 0, 0, 0, 0, nil, nil)

		if s.Issues == nil {
			t.Error("expected Issues to be non-nil")
		}
		if s.Warnings == nil {
			t.Error("expected Warnings to be non-nil")
		}
	})

	t.Run("duration is rounded to two decimals", func(t *testing.T) {
		t.Parallel()
		s := NewCrawlSummary("https://example.com", 0, 0, 0, 1234567890*time.Nanosecond, nil, nil)

		if s.DurationSeconds != 1.23 {
			t.Errorf("expected DurationSeconds to be 1.23, got %v", s.DurationSeconds)
		}
	})

	t.Run("FinishedAt is set", func(t *testing.T) {
		t.Parallel()
		s := NewCrawlSummary("https://example.com", 0, 0, 0, 0, nil, nil)

		if s.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
	})
}

// TestCrawlSummaryJSON verifies the serialized field names automation
// depends on, and that empty findings serialize as arrays, not null.
func TestCrawlSummaryJSON(t *testing.T) {
	t.Parallel()

	s := NewCrawlSummary("https://example.com", 2, 5, 1, 1500*time.Millisecond, nil, nil)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("failed to marshal summary: %v", err)
	}
	out := string(data)

	for _, field := range []string{
		`"base_url"`,
		`"checked_pages"`,
		`"checked_links"`,
		`"checked_images"`,
		`"duration_seconds"`,
		`"has_issues"`,
		`"has_warnings"`,
		`"issues"`,
		`"warnings"`,
		`"finished_at"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected JSON to contain %s, got %s", field, out)
		}
	}

	if strings.Contains(out, `"issues":null`) {
		t.Error("expected issues to serialize as an array, got null")
	}
	if strings.Contains(out, `"warnings":null`) {
		t.Error("expected warnings to serialize as an array, got null")
	}
}

// TestIssueJSONOmitsEmptyFields verifies that absent optional fields are
// omitted rather than serialized as zero values.
func TestIssueJSONOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	issue := Issue{
		Kind:    KindImageError,
		Message: "Image URL did not return an image content type.",
		Source:  "https://example.com",
		Target:  "https://example.com/logo.png",
	}

	data, err := json.Marshal(issue)
	if err != nil {
		t.Fatalf("failed to marshal issue: %v", err)
	}
	out := string(data)

	if strings.Contains(out, "status_code") {
		t.Errorf("expected status_code to be omitted when zero, got %s", out)
	}
	if !strings.Contains(out, `"target":"https://example.com/logo.png"`) {
		t.Errorf("expected target field, got %s", out)
	}
}

// TestCountByKind verifies counting across both issues and warnings.
func TestCountByKind(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Kind: KindPageError},
		{Kind: KindLinkError},
		{Kind: KindLinkError},
		{Kind: KindImageError},
	}
	warnings := []Issue{
		{Kind: KindLinkWarning},
	}
	s := NewCrawlSummary("https://example.com", 1, 3, 1, time.Second, issues, warnings)

	tests := []struct {
		kind IssueKind
		want int
	}{
		{kind: KindPageError, want: 1},
		{kind: KindLinkError, want: 2},
		{kind: KindImageError, want: 1},
		{kind: KindLinkWarning, want: 1},
	}

	for _, tt := range tests {
		if got := s.CountByKind(tt.kind); got != tt.want {
			t.Errorf("CountByKind(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
