package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webresearch/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-page excerpt appendix in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-page excerpts.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeOverview(&sb, report)
	w.writeKeywords(&sb, report)
	w.writeGroups(&sb, report)
	if w.verbose {
		w.writeAppendix(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report banner and run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        WEB RESEARCH REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run ID:     %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Generated:  %s\n", report.GeneratedAt.Format(timestampLayout)))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", report.Stats.Duration))
	sb.WriteString(fmt.Sprintf("Strategies: %s scoring, %s summaries\n",
		report.Stats.ScoreStrategy, report.Stats.SummaryStrategy))
	sb.WriteString("\n")
}

// writeOverview writes the run statistics section.
func (w *SimpleWriter) writeOverview(sb *strings.Builder, report *model.Report) {
	stats := report.Stats

	w.writeSectionRule(sb, "OVERVIEW")

	sb.WriteString(fmt.Sprintf("  Seed URLs:        %d\n", stats.TotalSeeds))
	sb.WriteString(fmt.Sprintf("  Pages visited:    %d\n", stats.PagesVisited))
	sb.WriteString(fmt.Sprintf("  Pages skipped:    %d\n", stats.PagesSkipped))
	sb.WriteString(fmt.Sprintf("  Fetch errors:     %d\n", stats.FetchErrors))
	sb.WriteString(fmt.Sprintf("  Relevant matches: %d\n", stats.TotalFiltered))
	if stats.DegradedGroups > 0 {
		sb.WriteString(fmt.Sprintf("  Groups:           %d (%d degraded)\n", stats.GroupCount, stats.DegradedGroups))
	} else {
		sb.WriteString(fmt.Sprintf("  Groups:           %d\n", stats.GroupCount))
	}
	sb.WriteString("\n")
}

// writeKeywords writes the keyword list with per-keyword match counts.
func (w *SimpleWriter) writeKeywords(sb *strings.Builder, report *model.Report) {
	w.writeSectionRule(sb, "KEYWORDS")

	counts := make(map[string]int, len(report.Stats.PerKeyword))
	for _, kc := range report.Stats.PerKeyword {
		counts[kc.Term] = kc.Count
	}

	for i, keyword := range report.Keywords {
		sb.WriteString(fmt.Sprintf("  [%d] %s (%d matches)\n", i+1, keyword.Term, counts[keyword.Term]))
		if keyword.Description != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", keyword.Description))
		}
	}
	sb.WriteString("\n")
}

// writeGroups writes one block per keyword group.
func (w *SimpleWriter) writeGroups(sb *strings.Builder, report *model.Report) {
	w.writeSectionRule(sb, "RESULTS")

	if len(report.Groups) == 0 {
		sb.WriteString("  No keyword groups were produced.\n\n")
		return
	}

	for i, group := range report.Groups {
		sb.WriteString(fmt.Sprintf("[%d] %s (%d pages)\n", i+1, group.Keyword, len(group.Members)))
		if group.Degraded {
			sb.WriteString(fmt.Sprintf("    NOTE: generative summary failed (%s); extractive fallback shown\n", group.DegradedReason))
		}
		sb.WriteString("\n")

		if group.Summary != "" {
			for _, line := range strings.Split(group.Summary, "\n") {
				sb.WriteString("  " + line + "\n")
			}
			sb.WriteString("\n")
		}

		w.writeReferences(sb, group)
	}
}

// writeReferences writes a group's top member references.
func (w *SimpleWriter) writeReferences(sb *strings.Builder, group model.Group) {
	limit := len(group.Members)
	if limit > referenceLimit {
		limit = referenceLimit
	}

	sb.WriteString("  References:\n")
	for _, member := range group.Members[:limit] {
		title := member.Page.Title
		if title == "" {
			title = "(untitled)"
		}
		sb.WriteString(fmt.Sprintf("  * %s\n", title))
		sb.WriteString(fmt.Sprintf("    %s (%.1f%%)\n", member.Page.URL, member.Score*100))
	}
	sb.WriteString("\n")
}

// writeAppendix writes per-page excerpts for traceability.
func (w *SimpleWriter) writeAppendix(sb *strings.Builder, report *model.Report) {
	pages := appendixPages(report)
	if len(pages) == 0 {
		return
	}

	w.writeSectionRule(sb, "PAGE EXCERPTS")

	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		sb.WriteString(fmt.Sprintf("  %s\n  %s\n", title, page.URL))
		sb.WriteString("  " + excerpt(page.BodyText, appendixExcerptRunes) + "\n\n")
	}
}

// writeSectionRule writes a dashed section header.
func (w *SimpleWriter) writeSectionRule(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by webresearch\n")
	sb.WriteString("https://github.com/nao1215/webresearch\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
