package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/astridwanja/sitecheck/internal/config"
	"github.com/astridwanja/sitecheck/internal/database"
	"github.com/astridwanja/sitecheck/internal/model"
	"github.com/astridwanja/sitecheck/internal/urlutil"
)

// Constants for health direction and summary messages.
const (
	healthDirectionWorsened  = "worsened"
	healthDirectionImproved  = "improved"
	healthDirectionUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command inspects past runs recorded in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [base-url]",
		Short: "Inspect recorded check runs",
		Long: `History lists recorded check runs and compares them.

Each 'sitecheck check' run is recorded in a local database unless
--no-save was given. This command retrieves that history and shows:
- Which sites have been checked
- All recorded runs for a site
- What changed between two runs (new and resolved findings)

Examples:
  # List all checked sites in the database
  sitecheck history --list-sites

  # List run history for a site
  sitecheck history --list https://example.com

  # Compare the latest two runs of a site
  sitecheck history --diff https://example.com

  # Compare the latest run with a specific run by ID
  sitecheck history --diff --with-run-id 5 https://example.com

  # Output the comparison in JSON format
  sitecheck history --diff --json https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all checked sites in the database")

	// Comparison flags
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest two runs for the specified site")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sites flag first (requires database but no site)
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-sites).
	// This prevents database lock issues when validation fails.
	var baseURL string
	if !listSites {
		if len(args) == 0 {
			return errors.New("base URL is required (use --list-sites to see available sites)")
		}

		// Runs are recorded under the normalized base URL
		baseURL = urlutil.Normalize(args[0])
		if !urlutil.IsHTTP(baseURL) {
			return fmt.Errorf("invalid base URL: %s", args[0])
		}
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listSites {
		return listCheckedSites(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, baseURL)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}

	// --diff is the default action when a site is given
	return runDiff(ctx, db, baseURL, withRunID, jsonOutput, markdownOutput)
}

// listCheckedSites lists all sites that have recorded runs in the database.
func listCheckedSites(ctx context.Context, db *database.CrawlDB) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No checked sites found in the database.")
		fmt.Println("\nUse 'sitecheck check <base-url>' to check a website.")
		return nil
	}

	fmt.Printf("Checked sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Printf("  • %s\n", site)
	}
	fmt.Println("\nUse 'sitecheck history --list <base-url>' to see run history for a site.")

	return nil
}

// listRunHistory lists all recorded runs for a specific site.
func listRunHistory(ctx context.Context, db *database.CrawlDB, baseURL string) error {
	runs, err := db.GetRunHistory(ctx, baseURL)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", baseURL)
		fmt.Println("\nUse 'sitecheck check' to check this site.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", baseURL, len(runs))
	fmt.Printf("  %-6s  %-20s  %-7s  %-7s  %s\n", "ID", "Date", "Pages", "Issues", "Warnings")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-20s  %-7d  %-7d  %d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.CheckedPages,
			run.IssueCount,
			run.WarningCount,
		)
	}

	fmt.Println("\nUse 'sitecheck history <base-url>' to compare the latest two runs.")
	fmt.Println("Use 'sitecheck history --with-run-id <id> <base-url>' to compare with a specific run.")

	return nil
}

// runDiff performs the comparison between two recorded runs.
func runDiff(ctx context.Context, db *database.CrawlDB, baseURL string, withRunID int64, jsonOutput, markdownOutput bool) error {
	// Latest run is always the current one
	summaries, err := db.GetLatestSummaries(ctx, baseURL, 2)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(summaries) == 0 {
		return fmt.Errorf("no run history found for %s", baseURL)
	}

	if len(summaries) < 2 && withRunID == 0 {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(summaries))
	}

	current := summaries[0]

	var previous *model.CrawlSummary
	if withRunID > 0 {
		previous, err = db.GetSummaryByID(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run with ID %d: %w", withRunID, err)
		}
		if previous == nil {
			return fmt.Errorf("run with ID %d not found", withRunID)
		}
		// Validate that the run ID belongs to the same site
		if previous.BaseURL != baseURL {
			return fmt.Errorf("run ID %d belongs to %s, not %s", withRunID, previous.BaseURL, baseURL)
		}
	} else {
		previous = summaries[1]
	}

	diff := diffSummaries(previous, current)

	if jsonOutput {
		return outputDiffJSON(diff)
	}
	if markdownOutput {
		return outputDiffMarkdown(diff)
	}
	return outputDiffText(diff)
}

// DiffResult holds the result of comparing two recorded runs.
type DiffResult struct {
	// BaseURL is the compared site.
	BaseURL string `json:"base_url"`

	// PreviousRun contains metadata about the older run.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun contains metadata about the newer run.
	CurrentRun RunSummary `json:"current_run"`

	// NewFindings contains issues and warnings that are new in the
	// current run.
	NewFindings []model.Issue `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings from the previous run that are
	// no longer present.
	ResolvedFindings []model.Issue `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings present in both runs.
	UnchangedCount int `json:"unchanged_count"`

	// HealthChange describes the overall change in site health.
	HealthChange HealthChange `json:"health_change"`
}

// RunSummary contains metadata about one run for comparison display.
type RunSummary struct {
	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at"`

	// CheckedPages is the number of pages crawled.
	CheckedPages int `json:"checked_pages"`

	// IssueCount is the number of issues found.
	IssueCount int `json:"issue_count"`

	// WarningCount is the number of warnings reported.
	WarningCount int `json:"warning_count"`
}

// HealthChange describes the change in site health between runs.
type HealthChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// IssueDelta is the change in issue count.
	IssueDelta int `json:"issue_delta"`

	// WarningDelta is the change in warning count.
	WarningDelta int `json:"warning_delta"`
}

// diffSummaries compares two runs and generates a diff result.
func diffSummaries(previous, current *model.CrawlSummary) *DiffResult {
	result := &DiffResult{
		BaseURL: current.BaseURL,
		PreviousRun: RunSummary{
			FinishedAt:   previous.FinishedAt,
			CheckedPages: previous.CheckedPages,
			IssueCount:   len(previous.Issues),
			WarningCount: len(previous.Warnings),
		},
		CurrentRun: RunSummary{
			FinishedAt:   current.FinishedAt,
			CheckedPages: current.CheckedPages,
			IssueCount:   len(current.Issues),
			WarningCount: len(current.Warnings),
		},
	}

	previousFindings := make(map[string]model.Issue)
	currentFindings := make(map[string]model.Issue)

	for _, f := range allFindings(previous) {
		previousFindings[findingKey(f)] = f
	}
	for _, f := range allFindings(current) {
		currentFindings[findingKey(f)] = f
	}

	// New findings (in current but not in previous)
	for _, f := range allFindings(current) {
		if _, exists := previousFindings[findingKey(f)]; !exists {
			result.NewFindings = append(result.NewFindings, f)
		}
	}

	// Resolved findings (in previous but not in current)
	for _, f := range allFindings(previous) {
		if _, exists := currentFindings[findingKey(f)]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, f)
		} else {
			result.UnchangedCount++
		}
	}

	result.HealthChange = calculateHealthChange(result.PreviousRun, result.CurrentRun)

	return result
}

// allFindings returns a run's issues and warnings as one list.
func allFindings(s *model.CrawlSummary) []model.Issue {
	findings := make([]model.Issue, 0, len(s.Issues)+len(s.Warnings))
	findings = append(findings, s.Issues...)
	findings = append(findings, s.Warnings...)
	return findings
}

// findingKey generates a unique key for a finding for comparison purposes.
// Status codes are deliberately excluded: a link that went from 404 to
// 500 is still the same broken link.
func findingKey(f model.Issue) string {
	return string(f.Kind) + "|" + f.Target + "|" + f.Message
}

// calculateHealthChange calculates the change in site health between runs.
// Issues weigh more than warnings when determining the direction.
func calculateHealthChange(previous, current RunSummary) HealthChange {
	change := HealthChange{
		IssueDelta:   current.IssueCount - previous.IssueCount,
		WarningDelta: current.WarningCount - previous.WarningCount,
	}

	previousScore := previous.IssueCount*10 + previous.WarningCount
	currentScore := current.IssueCount*10 + current.WarningCount

	switch {
	case currentScore < previousScore:
		change.Direction = healthDirectionImproved
	case currentScore > previousScore:
		change.Direction = healthDirectionWorsened
	default:
		change.Direction = healthDirectionUnchanged
	}

	return change
}

// outputDiffJSON outputs the diff result in JSON format.
func outputDiffJSON(result *DiffResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputDiffMarkdown outputs the diff result in Markdown format.
func outputDiffMarkdown(result *DiffResult) error {
	fmt.Printf("# Run Comparison: %s\n\n", result.BaseURL)

	fmt.Println("## Summary")
	fmt.Printf("\n**Health Status:** %s\n\n", formatHealthDirection(result.HealthChange.Direction))

	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousRun.FinishedAt.Format("2006-01-02 15:04"),
		result.CurrentRun.FinishedAt.Format("2006-01-02 15:04"))
	fmt.Printf("| Pages | %d | %d | %s |\n",
		result.PreviousRun.CheckedPages,
		result.CurrentRun.CheckedPages,
		formatDelta(result.CurrentRun.CheckedPages-result.PreviousRun.CheckedPages))
	fmt.Printf("| Issues | %d | %d | %s |\n",
		result.PreviousRun.IssueCount,
		result.CurrentRun.IssueCount,
		formatDelta(result.HealthChange.IssueDelta))
	fmt.Printf("| Warnings | %d | %d | %s |\n",
		result.PreviousRun.WarningCount,
		result.CurrentRun.WarningCount,
		formatDelta(result.HealthChange.WarningDelta))

	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s\n", f.Kind, f.Message)
			if f.Target != "" {
				fmt.Printf("  - Target: `%s`\n", f.Target)
			}
		}
	}

	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s~~\n", f.Kind, f.Message)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputDiffText outputs the diff result in human-readable text format.
func outputDiffText(result *DiffResult) error {
	fmt.Printf("Run Comparison: %s\n", result.BaseURL)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nHealth Status: %s\n", formatHealthDirection(result.HealthChange.Direction))

	fmt.Printf("\nPrevious run: %s\n", result.PreviousRun.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current run:  %s\n", result.CurrentRun.FinishedAt.Format("2006-01-02 15:04:05"))

	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Issues",
		result.PreviousRun.IssueCount, result.CurrentRun.IssueCount,
		formatDelta(result.HealthChange.IssueDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Warnings",
		result.PreviousRun.WarningCount, result.CurrentRun.WarningCount,
		formatDelta(result.HealthChange.WarningDelta))

	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s\n", f.Kind, f.Message)
			if f.Target != "" {
				fmt.Printf("      Target: %s\n", f.Target)
			}
		}
	}

	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s\n", f.Kind, f.Message)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatHealthDirection formats the health change direction for display.
func formatHealthDirection(direction string) string {
	switch direction {
	case healthDirectionImproved:
		return "IMPROVED (fewer findings)"
	case healthDirectionWorsened:
		return "WORSENED (more findings)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
