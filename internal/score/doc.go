// Package score filters crawled pages by relevance to the configured
// keywords.
//
// Two interchangeable strategies implement the same contract: Lexical
// needs no external service and ranks by bounded token overlap;
// Embedding asks a vector backend for page and keyword embeddings and
// ranks by rescaled cosine similarity. The strategy is chosen once at
// configuration time and never substituted mid-run: if the embedding
// backend is down, the run fails with ErrScoringUnavailable instead of
// quietly producing lexical scores under an embedding label.
//
// The Scorer emits one ScoredPage per (page, keyword) pair at or above
// the threshold, ordered score-descending with crawl order breaking
// ties, and that ordering is what every later stage preserves.
package score
