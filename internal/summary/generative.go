package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/webresearch/internal/model"
)

const (
	// generativeMemberLimit is how many member pages feed the prompt.
	generativeMemberLimit = 10

	// generativeExcerptRunes caps each member's text in the prompt,
	// keeping the whole request inside the model's context budget.
	generativeExcerptRunes = 500
)

// Generator is the summarization service consumed by the generative
// strategy. *llm.Client satisfies this interface.
type Generator interface {
	Summarize(ctx context.Context, content, guidance string) (string, error)
}

// Generative summarizes a group by sending its member texts to a
// generative service and using the reply verbatim. Errors propagate to
// the summarizer, which degrades the group to an extractive summary.
type Generative struct {
	generator    Generator
	language     string
	memberLimit  int
	excerptRunes int
}

// GenerativeOption configures the generative strategy.
type GenerativeOption func(*Generative)

// WithLanguage sets the language the summary should be written in
// ("en" or "ko"). Defaults to English.
func WithLanguage(language string) GenerativeOption {
	return func(g *Generative) {
		g.language = language
	}
}

// NewGenerative creates the generative strategy around the given
// service.
func NewGenerative(generator Generator, opts ...GenerativeOption) *Generative {
	g := &Generative{
		generator:    generator,
		language:     "en",
		memberLimit:  generativeMemberLimit,
		excerptRunes: generativeExcerptRunes,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name identifies the strategy.
func (g *Generative) Name() string {
	return "generative"
}

// Summarize implements Strategy.
func (g *Generative) Summarize(ctx context.Context, keyword model.KeywordSpec, members []model.ScoredPage) (string, error) {
	reply, err := g.generator.Summarize(ctx, g.buildContent(keyword, members), g.guidance())
	if err != nil {
		return "", fmt.Errorf("generative summary for %q: %w", keyword.Term, err)
	}
	if reply == "" {
		return "", fmt.Errorf("generative summary for %q: empty reply", keyword.Term)
	}
	return reply, nil
}

// buildContent assembles the user message: the keyword with its
// description, then the top member pages as numbered excerpts.
func (g *Generative) buildContent(keyword model.KeywordSpec, members []model.ScoredPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Keyword: %s\n", keyword.Term)
	if keyword.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", keyword.Description)
	}
	b.WriteString("\nRelated documents:\n")

	limit := len(members)
	if limit > g.memberLimit {
		limit = g.memberLimit
	}
	for i, member := range members[:limit] {
		fmt.Fprintf(&b, "\n%d. %s\n%s\n", i+1, member.Page.Title, excerpt(member.Page.BodyText, g.excerptRunes))
	}
	return b.String()
}

// guidance builds the system message, including the output language
// when it is not English.
func (g *Generative) guidance() string {
	guidance := "You are an expert at summarizing technical documents. " +
		"Read the documents and summarize the key points in 3 to 5 bullet points."
	if g.language == "ko" {
		guidance += " Write the summary in Korean."
	}
	return guidance
}
