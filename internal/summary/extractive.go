package summary

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/webresearch/internal/model"
)

const (
	// minSentenceRunes drops fragments too short to carry meaning.
	minSentenceRunes = 20

	// maxSentenceRunes drops run-on text that would bloat a summary.
	maxSentenceRunes = 300

	// extractiveSentenceLimit is the number of sentences in a summary.
	extractiveSentenceLimit = 5

	// extractiveMemberLimit is how many member pages feed a summary.
	// Members arrive best-score-first, so this keeps the most relevant.
	extractiveMemberLimit = 5

	// leadRunes caps the lead sentence used by the no-match fallback.
	leadRunes = 200
)

// Extractive summarizes a group by picking its most keyword-dense
// sentences. It is fully offline and never fails, which is why it also
// serves as the fallback when generative summarization errors out.
type Extractive struct {
	sentenceLimit int
	memberLimit   int
}

// NewExtractive creates the extractive strategy with its defaults.
func NewExtractive() *Extractive {
	return &Extractive{
		sentenceLimit: extractiveSentenceLimit,
		memberLimit:   extractiveMemberLimit,
	}
}

// Name identifies the strategy.
func (e *Extractive) Name() string {
	return "extractive"
}

// Summarize implements Strategy. The error is always nil.
func (e *Extractive) Summarize(_ context.Context, keyword model.KeywordSpec, members []model.ScoredPage) (string, error) {
	return e.extract(keyword, members), nil
}

// scoredSentence is one candidate sentence with its position in the
// concatenated member text and its keyword density.
type scoredSentence struct {
	text     string
	position int
	density  float64
}

// extract builds the summary: sentences from the top member pages are
// scored by keyword density, the densest are selected, and the
// selection is put back into reading order.
func (e *Extractive) extract(keyword model.KeywordSpec, members []model.ScoredPage) string {
	if len(members) > e.memberLimit {
		members = members[:e.memberLimit]
	}

	term := strings.ToLower(keyword.Term)
	seen := make(map[string]bool)
	var candidates []scoredSentence
	position := 0
	for _, member := range members {
		for _, sentence := range splitSentences(member.Page.BodyText) {
			position++
			length := utf8.RuneCountInString(sentence)
			if length < minSentenceRunes || length > maxSentenceRunes {
				continue
			}
			lower := strings.ToLower(sentence)
			count := strings.Count(lower, term)
			if count == 0 || seen[lower] {
				continue
			}
			seen[lower] = true
			words := len(strings.Fields(sentence))
			if words == 0 {
				words = 1
			}
			candidates = append(candidates, scoredSentence{
				text:     sentence,
				position: position,
				density:  float64(count) / float64(words),
			})
		}
	}

	if len(candidates) == 0 {
		return e.leadFallback(members)
	}

	// Densest first; stability keeps earlier sentences ahead on ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].density > candidates[j].density
	})
	if len(candidates) > e.sentenceLimit {
		candidates = candidates[:e.sentenceLimit]
	}
	// Back to original position so the summary reads in source order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].position < candidates[j].position
	})

	lines := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		lines = append(lines, "- "+candidate.text)
	}
	return strings.Join(lines, "\n")
}

// leadFallback covers groups whose pages never mention the keyword
// term in a usable sentence: it falls back to the lead sentence of the
// top members, labeled with their titles.
func (e *Extractive) leadFallback(members []model.ScoredPage) string {
	limit := len(members)
	if limit > 3 {
		limit = 3
	}

	var lines []string
	for _, member := range members[:limit] {
		sentences := splitSentences(member.Page.BodyText)
		if len(sentences) == 0 {
			continue
		}
		lead := excerpt(sentences[0], leadRunes)
		if member.Page.Title != "" {
			lines = append(lines, "- "+member.Page.Title+": "+lead)
		} else {
			lines = append(lines, "- "+lead)
		}
	}
	if len(lines) == 0 {
		return "No summary available."
	}
	return strings.Join(lines, "\n")
}

// splitSentences splits text into sentences on terminators (. ! ?)
// followed by whitespace or end of text, and on newlines. Terminators
// stay attached to their sentence; abbreviation-internal periods like
// "3.14" do not split because no whitespace follows them.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()
	return sentences
}

// excerpt returns at most limit runes of text, marking truncation
// with an ellipsis.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
