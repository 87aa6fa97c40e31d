package score

import (
	"context"
	"errors"
	"sort"

	"github.com/nao1215/webresearch/internal/model"
)

// ErrScoringUnavailable is returned when the selected scoring strategy's
// backend cannot be reached. The run fails fast instead of silently
// switching strategies: results scored by a different strategy than the
// one the user asked for would be unexplainable.
var ErrScoringUnavailable = errors.New("scoring backend unavailable")

// Strategy scores one page against one keyword. Implementations must be
// deterministic for identical inputs within a run.
type Strategy interface {
	// Name identifies the strategy in reports and logs.
	Name() string

	// Prepare runs once before any page is scored. Strategies that
	// depend on an external backend verify it here so a dead backend
	// fails the run before any page work happens.
	Prepare(ctx context.Context, keywords []model.KeywordSpec) error

	// Score returns the relevance of the page to the keyword in [0,1].
	Score(ctx context.Context, page *model.PageRecord, keyword model.KeywordSpec) (float64, error)
}

// Scorer applies one strategy to every (page, keyword) pair and keeps
// the pairs at or above the threshold.
type Scorer struct {
	strategy  Strategy
	threshold float64
}

// NewScorer creates a Scorer for the given strategy and threshold.
// The threshold is expected to be within [0,1]; config validation
// enforces that before a Scorer is ever built.
func NewScorer(strategy Strategy, threshold float64) *Scorer {
	return &Scorer{strategy: strategy, threshold: threshold}
}

// StrategyName returns the name of the configured strategy.
func (s *Scorer) StrategyName() string {
	return s.strategy.Name()
}

// Score computes a relevance score for every (page, keyword) pair and
// returns the pairs scoring at or above the threshold, sorted by score
// descending with ties kept in crawl order (depth, then discovery
// order). A page qualifying for several keywords appears once per
// qualifying keyword. Pages qualifying for none are silently dropped.
func (s *Scorer) Score(ctx context.Context, pages []*model.PageRecord, keywords []model.KeywordSpec) (model.FilteredSet, error) {
	if err := s.strategy.Prepare(ctx, keywords); err != nil {
		return nil, err
	}

	filtered := make(model.FilteredSet, 0, len(pages))
	for _, page := range pages {
		for _, kw := range keywords {
			sc, err := s.strategy.Score(ctx, page, kw)
			if err != nil {
				return nil, err
			}
			if sc >= s.threshold {
				filtered = append(filtered, model.ScoredPage{Page: page, Keyword: kw.Term, Score: sc})
			}
		}
	}

	// Stable so that equal-score entries of the same page keep keyword
	// declaration order.
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		if filtered[i].Page.Depth != filtered[j].Page.Depth {
			return filtered[i].Page.Depth < filtered[j].Page.Depth
		}
		return filtered[i].Page.Order < filtered[j].Page.Order
	})

	return filtered, nil
}
