package summary

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/webresearch/internal/model"
)

// Strategy produces the summary text for one keyword group.
type Strategy interface {
	// Name identifies the strategy in reports and logs.
	Name() string

	// Summarize returns the summary for the given keyword's member
	// pages. Members arrive in their filtered order (best score first).
	Summarize(ctx context.Context, keyword model.KeywordSpec, members []model.ScoredPage) (string, error)
}

// Summarizer groups the filtered pages by keyword and produces one
// summary per group with the configured strategy.
//
// Design decision: The summarizer owns the degradation policy rather
// than the generative strategy because:
//  1. A failed group summary must mark the group degraded and keep the
//     run alive, which is group bookkeeping, not strategy logic
//  2. The extractive fallback must be the same code path as the
//     extractive strategy proper, so both live here side by side
//  3. Strategies stay single-purpose: text in, summary or error out
type Summarizer struct {
	strategy Strategy
	fallback *Extractive
	logger   *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLogger sets the logger used for per-group progress and
// degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// NewSummarizer creates a summarizer around the given strategy.
func NewSummarizer(strategy Strategy, opts ...Option) *Summarizer {
	s := &Summarizer{
		strategy: strategy,
		fallback: NewExtractive(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StrategyName returns the configured strategy's name.
func (s *Summarizer) StrategyName() string {
	return s.strategy.Name()
}

// Summarize partitions the filtered set into keyword groups and
// summarizes each. Groups come out in keyword declaration order;
// keywords with no surviving pages produce no group. A page scored
// against several keywords appears in each of their groups.
//
// Strategy failures never fail the run: the group falls back to an
// extractive summary and is marked degraded. On context cancellation
// the groups finished so far are returned alongside the context error.
func (s *Summarizer) Summarize(ctx context.Context, filtered model.FilteredSet, keywords []model.KeywordSpec) ([]model.Group, error) {
	byKeyword := make(map[string][]model.ScoredPage, len(keywords))
	for _, scored := range filtered {
		byKeyword[scored.Keyword] = append(byKeyword[scored.Keyword], scored)
	}

	groups := make([]model.Group, 0, len(keywords))
	for _, keyword := range keywords {
		members := byKeyword[keyword.Term]
		if len(members) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			s.logger.Debug("summarization interrupted",
				slog.Int("groups_done", len(groups)))
			return groups, err
		}

		group := model.Group{
			Keyword:     keyword.Term,
			Description: keyword.Description,
			Members:     members,
		}

		text, err := s.strategy.Summarize(ctx, keyword, members)
		switch {
		case err == nil:
			group.Summary = text
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return groups, err
		default:
			s.logger.Warn("group summary degraded to extractive",
				slog.String("keyword", keyword.Term),
				slog.String("reason", err.Error()))
			group.Summary = s.fallback.extract(keyword, members)
			group.Degraded = true
			group.DegradedReason = err.Error()
		}

		groups = append(groups, group)
		s.logger.Debug("group summarized",
			slog.String("keyword", keyword.Term),
			slog.Int("members", len(members)),
			slog.Bool("degraded", group.Degraded))
	}
	return groups, nil
}
