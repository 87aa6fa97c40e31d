package model

import "strings"

// KeywordSpec is one research keyword together with the free-text
// description that weights it. The description feeds both scoring
// strategies: lexical scoring tokenizes it alongside the term, and
// embedding scoring embeds "term: description" as the query vector.
//
// KeywordSpec values are immutable once loaded. The loaded set is
// non-empty and terms are unique case-insensitively; both properties
// are enforced by config validation before any stage runs.
type KeywordSpec struct {
	// Term is the keyword itself (e.g. "machine learning").
	Term string `json:"term"`

	// Description is the weighting text for the term. May be empty when
	// the input file provides only a bare keyword.
	Description string `json:"description,omitempty"`
}

// Query returns the combined "term: description" text used as the
// embedding query for this keyword. Falls back to the bare term when
// no description was given.
func (k KeywordSpec) Query() string {
	if k.Description == "" {
		return k.Term
	}
	return k.Term + ": " + k.Description
}

// EqualTerm reports whether the given term names this keyword,
// compared case-insensitively.
func (k KeywordSpec) EqualTerm(term string) bool {
	return strings.EqualFold(k.Term, term)
}
