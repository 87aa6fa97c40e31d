package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/webresearch/internal/model"
)

// referenceLimit is how many member references each group section
// lists; the remaining members still appear in the appendix.
const referenceLimit = 5

// appendixExcerptRunes caps the per-page excerpt in the appendix.
const appendixExcerptRunes = 1000

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
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

// Write renders the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeOverview(md, report)
	w.writeKeywords(md, report)
	w.writeGroups(md, report)
	w.writeAppendix(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Web Research Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Generated", report.GeneratedAt.Format(timestampLayout)},
			{"Duration", report.Stats.Duration.String()},
			{"Scoring", report.Stats.ScoreStrategy},
			{"Summaries", report.Stats.SummaryStrategy},
		},
	})
	md.PlainText("")
}

// writeOverview writes the run statistics section.
func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, report *model.Report) {
	stats := report.Stats

	md.H2("Overview")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Seed URLs", strconv.Itoa(stats.TotalSeeds)},
			{"Pages visited", strconv.Itoa(stats.PagesVisited)},
			{"Pages skipped", strconv.Itoa(stats.PagesSkipped)},
			{"Fetch errors", strconv.Itoa(stats.FetchErrors)},
			{"Relevant matches", strconv.Itoa(stats.TotalFiltered)},
			{"Groups", strconv.Itoa(stats.GroupCount)},
		},
	})
	md.PlainText("")

	if stats.TotalFiltered > 0 {
		w.writePieChart(md, stats)
	}

	switch {
	case stats.PagesVisited == 0:
		md.Cautionf("No pages were crawled (%d fetch errors). The report is empty.", stats.FetchErrors)
		md.PlainText("")
	case stats.TotalFiltered == 0:
		md.Note("No crawled page met the relevance threshold.")
		md.PlainText("")
	case stats.DegradedGroups > 0:
		md.Warningf("Generative summarization degraded for %d group(s); extractive fallbacks are shown.", stats.DegradedGroups)
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of matches per keyword.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats model.Stats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Matches per Keyword"),
		piechart.WithShowData(true),
	)

	for _, kc := range stats.PerKeyword {
		if kc.Count > 0 {
			chart.LabelAndIntValue(kc.Term, uint64(kc.Count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeKeywords writes the keyword list with their descriptions.
func (w *MarkdownWriter) writeKeywords(md *markdown.Markdown, report *model.Report) {
	md.H2("Keywords")
	md.PlainText("")

	for _, keyword := range report.Keywords {
		md.PlainText("- " + markdown.Bold(keyword.Term))
		if keyword.Description != "" {
			md.Blockquote(keyword.Description)
		}
	}
	md.PlainText("")
}

// writeGroups writes one section per keyword group.
func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, report *model.Report) {
	md.H2("Results")
	md.PlainText("")

	if len(report.Groups) == 0 {
		md.PlainText("No keyword groups were produced.")
		md.PlainText("")
		return
	}

	caser := cases.Title(language.English)
	for i, group := range report.Groups {
		md.H3(fmt.Sprintf("%d. %s", i+1, caser.String(group.Keyword)))
		md.PlainText("")

		if group.Description != "" {
			md.Blockquote(group.Description)
			md.PlainText("")
		}

		md.PlainTextf("%d page(s) matched this keyword.", len(group.Members))
		md.PlainText("")

		if group.Degraded {
			md.Warningf("Generative summarization failed (%s). Showing the extractive fallback.", group.DegradedReason)
			md.PlainText("")
		}

		if group.Summary != "" {
			md.PlainText(group.Summary)
			md.PlainText("")
		}

		w.writeReferences(md, group)
	}
}

// writeReferences writes a group's top member references.
func (w *MarkdownWriter) writeReferences(md *markdown.Markdown, group model.Group) {
	limit := len(group.Members)
	if limit > referenceLimit {
		limit = referenceLimit
	}

	rows := make([][]string, 0, limit)
	for rank, member := range group.Members[:limit] {
		title := member.Page.Title
		if title == "" {
			title = "(untitled)"
		}
		rows = append(rows, []string{
			strconv.Itoa(rank + 1),
			excerpt(title, 60),
			member.Page.URL,
			fmt.Sprintf("%.1f%%", member.Score*100),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "URL", "Score"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAppendix writes collapsible per-page excerpts for traceability.
func (w *MarkdownWriter) writeAppendix(md *markdown.Markdown, report *model.Report) {
	pages := appendixPages(report)
	if len(pages) == 0 {
		return
	}

	md.H2("Appendix: Page Excerpts")
	md.PlainText("")
	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		md.Details(title+" ("+page.URL+")", excerpt(page.BodyText, appendixExcerptRunes))
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webresearch](https://github.com/nao1215/webresearch)*")
}

// appendixPages returns the unique pages referenced by the report's
// groups in first-appearance order.
func appendixPages(report *model.Report) []*model.PageRecord {
	seen := make(map[string]bool)
	var pages []*model.PageRecord
	for _, group := range report.Groups {
		for _, member := range group.Members {
			if seen[member.Page.URL] {
				continue
			}
			seen[member.Page.URL] = true
			pages = append(pages, member.Page)
		}
	}
	return pages
}
