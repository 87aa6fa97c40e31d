// Package main provides the entry point for the webresearch CLI.
//
// webresearch is a keyword-driven research tool for the web. It crawls a
// set of seed URLs, filters the collected pages by keyword relevance, and
// assembles per-keyword summaries into a single research report.
//
// Usage:
//
//	webresearch init
//	webresearch run
//	webresearch history [run-id]
//
// See --help for all available options.
package main

// main is the entry point for webresearch.
func main() {
	Execute()
}
