package report

import (
	"time"

	"github.com/nao1215/webresearch/internal/model"
)

// AssembleInput carries everything the assembler needs. All fields are
// produced by earlier stages; the assembler itself performs no I/O and
// never reads the clock, so identical inputs yield identical reports.
type AssembleInput struct {
	// RunID identifies the run.
	RunID string

	// GeneratedAt is the report timestamp, decided by the caller.
	GeneratedAt time.Time

	// Keywords is the keyword set in declaration order.
	Keywords []model.KeywordSpec

	// Crawl is the crawl outcome. May be nil when the crawl stage
	// never ran.
	Crawl *model.CrawlResult

	// Filtered is the threshold-surviving scored set.
	Filtered model.FilteredSet

	// Groups are the summarized keyword groups in declaration order.
	Groups []model.Group

	// ScoreStrategy and SummaryStrategy name the strategies used.
	ScoreStrategy   string
	SummaryStrategy string

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Assemble builds the final report from the stage outputs. It is a
// pure function: the only sources of report content are the input
// fields, which keeps rendering reproducible and testable.
func Assemble(in AssembleInput) *model.Report {
	report := model.NewReport(in.RunID, in.GeneratedAt, in.Keywords)
	if in.Groups != nil {
		report.Groups = in.Groups
	}

	stats := model.Stats{
		TotalFiltered:   len(in.Filtered),
		GroupCount:      len(in.Groups),
		ScoreStrategy:   in.ScoreStrategy,
		SummaryStrategy: in.SummaryStrategy,
		Duration:        in.Duration,
	}
	if in.Crawl != nil {
		stats.TotalSeeds = in.Crawl.TotalSeeds
		stats.PagesVisited = in.Crawl.PagesVisited
		stats.PagesSkipped = in.Crawl.PagesSkipped
		stats.FetchErrors = len(in.Crawl.Errors)
	}

	stats.PerKeyword = make([]model.KeywordCount, 0, len(in.Keywords))
	for _, keyword := range in.Keywords {
		count := 0
		for _, scored := range in.Filtered {
			if scored.Keyword == keyword.Term {
				count++
			}
		}
		stats.PerKeyword = append(stats.PerKeyword, model.KeywordCount{
			Term:  keyword.Term,
			Count: count,
		})
	}

	for _, group := range in.Groups {
		if group.Degraded {
			stats.DegradedGroups++
		}
	}

	report.Stats = stats
	return report
}
