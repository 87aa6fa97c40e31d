// Package model defines the core data structures used throughout webresearch.
//
// This package contains the following main types:
//   - KeywordSpec: A research keyword with its weighting description
//   - PageRecord: A crawled web page with extracted text and links
//   - CrawlResult: The ordered outcome of one crawl with counters and errors
//   - ScoredPage / FilteredSet: Relevance-scored pages above the threshold
//   - Group: Pages grouped under one keyword, with their summary
//   - Report: The terminal artifact assembled from groups and statistics
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, score, summary, report, database)
// need to use these types, so centralizing them prevents import cycles.
//
// Values flow through the pipeline one stage at a time: each stage consumes
// the previous stage's output read-only and produces a new value. Nothing in
// this package mutates data created by an earlier stage.
package model
