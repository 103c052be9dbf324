package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/astridwanja/sitecheck/internal/model"
)

// MarkdownWriter outputs crawl summaries in Markdown format.
// This format is designed for CI artifacts and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeAlert(md, summary)
	w.writeIssues(md, summary)
	w.writeWarnings(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Website Check Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + summary.BaseURL + "`"},
			{"Finished", summary.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", fmt.Sprintf("%.2fs", summary.DurationSeconds)},
			{"Pages Crawled", strconv.Itoa(summary.CheckedPages)},
			{"Links Checked", strconv.Itoa(summary.CheckedLinks)},
			{"Images Checked", strconv.Itoa(summary.CheckedImages)},
			{"Status", statusText(summary)},
		},
	})
	md.PlainText("")
}

// statusText returns the overall status for the header table.
func statusText(summary *model.CrawlSummary) string {
	switch {
	case summary.HasIssues:
		return "❌ Issues Found"
	case summary.HasWarnings:
		return "⚠️ Warnings Only"
	default:
		return "✅ Healthy"
	}
}

// writeAlert writes a GFM alert reflecting the crawl outcome, plus a
// severity distribution chart when there is anything to distribute.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.CrawlSummary) {
	switch {
	case summary.HasIssues:
		md.Cautionf("%d issue(s) detected. Broken pages, links, or images need attention.", len(summary.Issues))
	case summary.HasWarnings:
		md.Warningf("%d warning(s) recorded. No hard failures, but manual verification is advised.", len(summary.Warnings))
	default:
		md.Tip("No issues detected. ✅")
	}
	md.PlainText("")

	if summary.HasIssues || summary.HasWarnings {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of findings by kind.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.CrawlSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Findings by Kind"),
		piechart.WithShowData(true),
	)

	kinds := []struct {
		kind  model.IssueKind
		label string
	}{
		{model.KindPageError, "Page Errors"},
		{model.KindLinkError, "Link Errors"},
		{model.KindImageError, "Image Errors"},
		{model.KindLinkWarning, "Link Warnings"},
	}
	for _, k := range kinds {
		if count := summary.CountByKind(k.kind); count > 0 {
			chart.LabelAndIntValue(k.label, uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeIssues writes the issue table.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Issues")
	md.PlainText("")

	if !summary.HasIssues {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	w.writeFindingsTable(md, summary.Issues)
}

// writeWarnings writes the warning table, if any warnings survived the
// engine's suppression rule.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, summary *model.CrawlSummary) {
	if !summary.HasWarnings {
		return
	}

	md.H2("Warnings")
	md.PlainText("")
	w.writeFindingsTable(md, summary.Warnings)
}

// writeFindingsTable writes a table of issues or warnings.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Issue) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		status := "-"
		if f.StatusCode != 0 {
			status = strconv.Itoa(f.StatusCode)
		}
		source := f.Source
		if source == "" {
			source = "-"
		}
		target := f.Target
		if target == "" {
			target = "-"
		}

		rows[i] = []string{
			string(f.Kind),
			f.Message,
			truncateString(source, 60),
			truncateString(target, 60),
			status,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Message", "Source", "Target", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by sitecheck*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
