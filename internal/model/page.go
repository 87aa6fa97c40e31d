package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// MaxBodyTextRunes is the maximum length of a page's stored body text,
// counted in runes so multi-byte text is never cut mid-character.
// Longer bodies are truncated; the full text is never needed past
// extraction because scoring and summarization both work on this cap.
const MaxBodyTextRunes = 5000

// PageRecord is one crawled page. Exactly one PageRecord exists per
// unique canonical URL per run, and the record is immutable after the
// crawler constructs it.
type PageRecord struct {
	// URL is the canonical URL of the page after redirects.
	URL string `json:"url"`

	// Depth is the traversal depth the page was fetched at.
	Depth int `json:"depth"`

	// Order is the discovery index within the run (0-based). Together
	// with Depth it defines the deterministic tie-break ordering used
	// by the relevance filter.
	Order int `json:"order"`

	// Title is the page title from the <title> tag, falling back to the
	// first <h1> when the title is empty.
	Title string `json:"title,omitempty"`

	// BodyText is the visible text of the page with scripts, styles,
	// and navigation chrome removed. Capped at MaxBodyTextRunes.
	BodyText string `json:"body_text,omitempty"`

	// OutgoingLinks holds absolute same-document links in the order the
	// extractor produced them. That order drives frontier insertion and
	// therefore downstream tie-breaks, so it must be preserved.
	OutgoingLinks []string `json:"outgoing_links,omitempty"`

	// Relevance is the crawl-time lexical pre-filter score in [0,1].
	// It only gates link expansion; the full relevance scorer runs
	// independently later. Kept for diagnostics.
	Relevance float64 `json:"relevance"`

	// FetchedAt is the time the fetch completed.
	FetchedAt time.Time `json:"fetched_at"`

	// Hash is the SHA-256 hash of the body text, for change detection
	// between archived runs.
	Hash string `json:"hash,omitempty"`
}

// TruncateBodyText enforces MaxBodyTextRunes on the body text.
// Call after setting BodyText and before ComputeHash.
func (p *PageRecord) TruncateBodyText() {
	runes := []rune(p.BodyText)
	if len(runes) > MaxBodyTextRunes {
		p.BodyText = string(runes[:MaxBodyTextRunes])
	}
}

// ComputeHash calculates and sets the SHA-256 hash of the body text.
func (p *PageRecord) ComputeHash() {
	if p.BodyText == "" {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256([]byte(p.BodyText))
	p.Hash = hex.EncodeToString(sum[:])
}

// CrawlError records one failed fetch. Failures never abort a run;
// they are carried as data into the report statistics.
type CrawlError struct {
	// URL is the URL whose fetch failed.
	URL string `json:"url"`

	// Reason is a short human-readable failure description,
	// e.g. "http error: 403" or "timeout".
	Reason string `json:"reason"`
}

// CrawlResult is the complete outcome of one crawl: the pages in
// discovery order plus the run counters. The crawler owns it while
// crawling; every later stage reads it without modification.
type CrawlResult struct {
	// Pages holds the fetched page records in discovery order.
	Pages []*PageRecord `json:"pages"`

	// TotalSeeds counts the unique valid seed URLs that entered the
	// frontier. Invalid and duplicate seeds are excluded.
	TotalSeeds int `json:"total_seeds"`

	// PagesVisited counts successful fetches. Never exceeds the
	// configured page budget.
	PagesVisited int `json:"pages_visited"`

	// PagesSkipped counts frontier tasks dropped without a fetch
	// (over depth, duplicate after redirect, budget exhausted).
	PagesSkipped int `json:"pages_skipped"`

	// Errors lists failed fetches in the order they occurred.
	Errors []CrawlError `json:"errors,omitempty"`
}

// NewCrawlResult creates an empty crawl result.
func NewCrawlResult() *CrawlResult {
	return &CrawlResult{
		Pages:  make([]*PageRecord, 0),
		Errors: make([]CrawlError, 0),
	}
}

// AddPage appends a page record and bumps the visited counter.
// The record's Order is assigned here so discovery order is always
// dense and gap-free even when fetches fail in between.
func (r *CrawlResult) AddPage(p *PageRecord) {
	p.Order = len(r.Pages)
	r.Pages = append(r.Pages, p)
	r.PagesVisited++
}

// AddError records a failed fetch.
func (r *CrawlResult) AddError(url, reason string) {
	r.Errors = append(r.Errors, CrawlError{URL: url, Reason: reason})
}
