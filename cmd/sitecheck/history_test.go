package main

import (
	"testing"
	"time"

	"github.com/astridwanja/sitecheck/internal/model"
)

// historySummary builds a summary for diff tests.
func historySummary(issues, warnings []model.Issue) *model.CrawlSummary {
	return model.NewCrawlSummary("https://example.com/", 3, 10, 2, time.Second, issues, warnings)
}

// TestDiffSummaries verifies new/resolved/unchanged classification.
func TestDiffSummaries(t *testing.T) {
	t.Parallel()

	broken404 := model.Issue{
		Kind:    model.KindLinkError,
		Message: "Link failed to load: HTTP 404",
		Target:  "https://external.example.net/gone",
	}
	brokenImage := model.Issue{
		Kind:    model.KindImageError,
		Message: "Image URL did not return an image content type.",
		Target:  "https://example.com/logo.png",
	}

	t.Run("identical runs have only unchanged findings", func(t *testing.T) {
		t.Parallel()
		previous := historySummary([]model.Issue{broken404}, nil)
		current := historySummary([]model.Issue{broken404}, nil)

		diff := diffSummaries(previous, current)

		if len(diff.NewFindings) != 0 {
			t.Errorf("expected no new findings, got %v", diff.NewFindings)
		}
		if len(diff.ResolvedFindings) != 0 {
			t.Errorf("expected no resolved findings, got %v", diff.ResolvedFindings)
		}
		if diff.UnchangedCount != 1 {
			t.Errorf("expected 1 unchanged finding, got %d", diff.UnchangedCount)
		}
		if diff.HealthChange.Direction != healthDirectionUnchanged {
			t.Errorf("expected unchanged direction, got %s", diff.HealthChange.Direction)
		}
	})

	t.Run("added issue is new and worsens health", func(t *testing.T) {
		t.Parallel()
		previous := historySummary([]model.Issue{broken404}, nil)
		current := historySummary([]model.Issue{broken404, brokenImage}, nil)

		diff := diffSummaries(previous, current)

		if len(diff.NewFindings) != 1 {
			t.Fatalf("expected 1 new finding, got %v", diff.NewFindings)
		}
		if diff.NewFindings[0].Kind != model.KindImageError {
			t.Errorf("expected new image_error, got %s", diff.NewFindings[0].Kind)
		}
		if diff.HealthChange.Direction != healthDirectionWorsened {
			t.Errorf("expected worsened direction, got %s", diff.HealthChange.Direction)
		}
		if diff.HealthChange.IssueDelta != 1 {
			t.Errorf("expected issue delta +1, got %d", diff.HealthChange.IssueDelta)
		}
	})

	t.Run("removed issue is resolved and improves health", func(t *testing.T) {
		t.Parallel()
		previous := historySummary([]model.Issue{broken404, brokenImage}, nil)
		current := historySummary([]model.Issue{brokenImage}, nil)

		diff := diffSummaries(previous, current)

		if len(diff.ResolvedFindings) != 1 {
			t.Fatalf("expected 1 resolved finding, got %v", diff.ResolvedFindings)
		}
		if diff.ResolvedFindings[0].Kind != model.KindLinkError {
			t.Errorf("expected resolved link_error, got %s", diff.ResolvedFindings[0].Kind)
		}
		if diff.HealthChange.Direction != healthDirectionImproved {
			t.Errorf("expected improved direction, got %s", diff.HealthChange.Direction)
		}
	})

	t.Run("warnings participate in the diff", func(t *testing.T) {
		t.Parallel()
		warning := model.Issue{
			Kind:    model.KindLinkWarning,
			Message: "LinkedIn returned HTTP 999 (likely bot protection). Please verify manually.",
			Target:  "https://www.linkedin.com/in/x",
		}
		previous := historySummary(nil, nil)
		current := historySummary(nil, []model.Issue{warning})

		diff := diffSummaries(previous, current)

		if len(diff.NewFindings) != 1 {
			t.Fatalf("expected 1 new finding, got %v", diff.NewFindings)
		}
		if diff.NewFindings[0].Kind != model.KindLinkWarning {
			t.Errorf("expected new link_warning, got %s", diff.NewFindings[0].Kind)
		}
	})
}

// TestFindingKey verifies that status codes do not affect identity.
func TestFindingKey(t *testing.T) {
	t.Parallel()

	a := model.Issue{
		Kind:       model.KindLinkError,
		Message:    "Link failed to load: HTTP 404",
		Target:     "https://external.example.net/gone",
		StatusCode: 404,
	}
	b := a
	b.StatusCode = 500

	if findingKey(a) != findingKey(b) {
		t.Error("expected identical keys regardless of status code")
	}

	c := a
	c.Target = "https://external.example.net/other"
	if findingKey(a) == findingKey(c) {
		t.Error("expected different keys for different targets")
	}
}

// TestCalculateHealthChange verifies the issue-weighted direction.
func TestCalculateHealthChange(t *testing.T) {
	t.Parallel()

	t.Run("trading one issue for many warnings still improves", func(t *testing.T) {
		t.Parallel()
		previous := RunSummary{IssueCount: 1}
		current := RunSummary{WarningCount: 5}

		change := calculateHealthChange(previous, current)

		if change.Direction != healthDirectionImproved {
			t.Errorf("expected improved, got %s", change.Direction)
		}
	})

	t.Run("equal counts are unchanged", func(t *testing.T) {
		t.Parallel()
		previous := RunSummary{IssueCount: 2, WarningCount: 1}
		current := RunSummary{IssueCount: 2, WarningCount: 1}

		change := calculateHealthChange(previous, current)

		if change.Direction != healthDirectionUnchanged {
			t.Errorf("expected unchanged, got %s", change.Direction)
		}
	})
}
