package model

// ScoredPage binds one page to one keyword with the relevance score the
// configured strategy produced for that pair. A page that qualifies for
// several keywords yields several ScoredPage entries sharing the same
// underlying PageRecord.
type ScoredPage struct {
	// Page is a shared reference to the crawled record. Never modified
	// after the crawl stage.
	Page *PageRecord `json:"page"`

	// Keyword is the term this score was computed against.
	Keyword string `json:"keyword"`

	// Score is the relevance score in [0,1]. Always at or above the
	// configured threshold once the page is part of a FilteredSet.
	Score float64 `json:"score"`
}

// FilteredSet is the threshold-surviving scored pages in their final
// deterministic order: score descending, ties broken by the page's
// crawl order (depth ascending, then discovery order). The score stage
// produces it with a stable sort; everything downstream preserves it.
type FilteredSet []ScoredPage

// Group is the set of filtered pages assigned to one keyword, plus the
// summary produced for them. Only keywords with at least one surviving
// page produce a Group.
type Group struct {
	// Keyword is the owning keyword term.
	Keyword string `json:"keyword"`

	// Description is the keyword's description, carried along so report
	// rendering does not need the keyword set.
	Description string `json:"description,omitempty"`

	// Members are the group's pages in FilteredSet order.
	Members []ScoredPage `json:"members"`

	// Summary is the group summary text. Extractive summaries are
	// bullet lines; generative summaries are the service reply verbatim.
	Summary string `json:"summary,omitempty"`

	// Degraded is true when generative summarization failed for this
	// group and the extractive fallback was used instead.
	Degraded bool `json:"degraded,omitempty"`

	// DegradedReason holds the failure that caused the fallback.
	DegradedReason string `json:"degraded_reason,omitempty"`
}
