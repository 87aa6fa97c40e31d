package model

import "time"

// Report is the terminal artifact of a research run. It is assembled
// exactly once after summarization and never mutated afterwards; the
// writers in the report package render it to markdown, JSON, or plain
// text without touching it.
//
// Design decision: We use a single flat struct rather than nested
// sub-reports because:
//  1. One struct serializes cleanly for the run archive
//  2. Writers need the whole picture anyway (stats + groups + keywords)
//  3. The pipeline hands exactly one value to the output boundary
type Report struct {
	// RunID uniquely identifies the run that produced this report.
	RunID string `json:"run_id"`

	// GeneratedAt is the report generation timestamp. It is supplied by
	// the caller at assembly time; rendering never reads the clock, so
	// identical inputs render byte-identically apart from this field.
	GeneratedAt time.Time `json:"generated_at"`

	// Keywords is the full keyword set in declaration order.
	Keywords []KeywordSpec `json:"keywords"`

	// Groups holds one entry per keyword with surviving pages, in
	// keyword declaration order.
	Groups []Group `json:"groups"`

	// Stats summarizes the run for the report header.
	Stats Stats `json:"stats"`
}

// Stats carries the run counters surfaced in the report header and in
// the archive listing.
type Stats struct {
	// TotalSeeds is the number of unique seed URLs after deduplication.
	TotalSeeds int `json:"total_seeds"`

	// PagesVisited is the number of successfully fetched pages.
	PagesVisited int `json:"pages_visited"`

	// PagesSkipped is the number of frontier tasks dropped unfetched.
	PagesSkipped int `json:"pages_skipped"`

	// FetchErrors is the number of failed fetches.
	FetchErrors int `json:"fetch_errors"`

	// TotalFiltered is the number of (page, keyword) pairs that
	// survived the relevance threshold.
	TotalFiltered int `json:"total_filtered"`

	// PerKeyword lists surviving page counts per keyword in keyword
	// declaration order. Keywords with zero matches appear with a zero
	// count here even though they produce no group.
	PerKeyword []KeywordCount `json:"per_keyword"`

	// GroupCount is the number of groups in the report.
	GroupCount int `json:"group_count"`

	// DegradedGroups counts groups whose generative summary failed and
	// fell back to the extractive one.
	DegradedGroups int `json:"degraded_groups"`

	// ScoreStrategy names the relevance strategy used ("lexical" or
	// "embedding").
	ScoreStrategy string `json:"score_strategy"`

	// SummaryStrategy names the summarization strategy used
	// ("extractive" or "generative").
	SummaryStrategy string `json:"summary_strategy"`

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration"`
}

// KeywordCount pairs a keyword term with its surviving page count.
// A slice of these keeps keyword order, which a map would lose.
type KeywordCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// NewReport creates a report shell for the given run. Groups and stats
// are filled in by the assembler.
func NewReport(runID string, generatedAt time.Time, keywords []KeywordSpec) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Keywords:    keywords,
		Groups:      make([]Group, 0),
	}
}
