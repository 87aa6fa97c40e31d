package score

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/webresearch/internal/model"
)

// Lexical scores pages by keyword-term overlap with no external model.
// The score combines how many of the keyword's tokens appear at all
// (coverage) with how often they appear relative to page length (term
// frequency), both bounded, so scores are threshold-comparable across
// page lengths:
//
//	score = coverage*0.6 + min(weightedTF, 1)*0.4
//
// where weightedTF sums count/pageWords*100 over the matched tokens.
// The TF term saturates quickly; coverage does most of the ranking.
type Lexical struct{}

// NewLexical creates the lexical scoring strategy.
func NewLexical() *Lexical {
	return &Lexical{}
}

// Name implements Strategy.
func (l *Lexical) Name() string {
	return "lexical"
}

// Prepare implements Strategy. Lexical scoring has no backend to check.
func (l *Lexical) Prepare(_ context.Context, _ []model.KeywordSpec) error {
	return nil
}

// Score implements Strategy.
func (l *Lexical) Score(_ context.Context, page *model.PageRecord, keyword model.KeywordSpec) (float64, error) {
	tokens := queryTokens(keyword)
	if len(tokens) == 0 {
		return 0, nil
	}

	doc := strings.ToLower(page.Title + " " + page.BodyText)
	words := len(strings.Fields(doc))
	if words == 0 {
		words = 1
	}

	matched := 0
	weighted := 0.0
	for _, tok := range tokens {
		count := strings.Count(doc, tok)
		if count == 0 {
			continue
		}
		matched++
		weighted += float64(count) / float64(words) * 100
	}

	coverage := float64(matched) / float64(len(tokens))
	if weighted > 1 {
		weighted = 1
	}
	return coverage*0.6 + weighted*0.4, nil
}

// queryTokens returns the lowercased search tokens for a keyword: the
// term itself plus every word of at least two characters from the
// description, deduplicated in first-occurrence order.
func queryTokens(keyword model.KeywordSpec) []string {
	seen := make(map[string]bool)
	tokens := make([]string, 0, 8)

	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	add(strings.ToLower(strings.TrimSpace(keyword.Term)))

	words := strings.FieldsFunc(strings.ToLower(keyword.Description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		add(w)
	}

	return tokens
}
