// Package summary groups the filtered pages by keyword and produces
// one summary per group.
//
// Grouping is driven by the ScoredPage's own keyword field: a page
// that qualified for two keywords appears in both groups, because its
// relevance was established per keyword, not per page. Groups are
// emitted in keyword declaration order, and a keyword with no
// surviving pages produces no group at all.
//
// Two strategies implement the Strategy interface:
//
//   - Extractive: offline, picks the most keyword-dense sentences
//     from the top member pages and restores their reading order.
//   - Generative: sends member excerpts to a generative service and
//     uses the reply verbatim.
//
// Generative failures never fail the run. The summarizer falls back to
// the extractive summary for that group and marks it degraded, keeping
// the failure visible in the report instead of raising it.
package summary
