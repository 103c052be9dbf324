package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/astridwanja/sitecheck/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: Plain text with ASCII formatting rather than ANSI
// colors because it works in all terminals and pipes cleanly to files.
type SimpleWriter struct {
	baseWriter

	// verbose enables per-finding status lines even for empty sections.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeFindings(&sb, "ISSUES", summary.Issues)
	if summary.HasWarnings || w.verbose {
		w.writeFindings(&sb, "WARNINGS", summary.Warnings)
	}
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report banner and crawl statistics.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("==================================================\n")
	sb.WriteString(" Website Check Report\n")
	sb.WriteString("==================================================\n\n")

	fmt.Fprintf(sb, "Base URL:       %s\n", summary.BaseURL)
	fmt.Fprintf(sb, "Finished:       %s\n", summary.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %.2fs\n", summary.DurationSeconds)
	fmt.Fprintf(sb, "Pages crawled:  %d\n", summary.CheckedPages)
	fmt.Fprintf(sb, "Links checked:  %d\n", summary.CheckedLinks)
	fmt.Fprintf(sb, "Images checked: %d\n\n", summary.CheckedImages)
}

// writeFindings writes a titled section of issues or warnings.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, title string, findings []model.Issue) {
	fmt.Fprintf(sb, "--- %s (%d) ---\n", title, len(findings))

	if len(findings) == 0 {
		sb.WriteString("  none\n\n")
		return
	}

	for i, f := range findings {
		fmt.Fprintf(sb, "%d. [%s] %s\n", i+1, f.Kind, f.Message)
		if f.Source != "" {
			fmt.Fprintf(sb, "   source: %s\n", f.Source)
		}
		if f.Target != "" {
			fmt.Fprintf(sb, "   target: %s\n", f.Target)
		}
		if f.StatusCode != 0 {
			fmt.Fprintf(sb, "   status: %d\n", f.StatusCode)
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the one-line verdict.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, summary *model.CrawlSummary) {
	switch {
	case summary.HasIssues:
		fmt.Fprintf(sb, "Result: %d issue(s) found.\n", len(summary.Issues))
	case summary.HasWarnings:
		fmt.Fprintf(sb, "Result: no issues, %d warning(s).\n", len(summary.Warnings))
	default:
		sb.WriteString("Result: no issues detected.\n")
	}
}
