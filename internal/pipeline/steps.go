package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/webresearch/internal/model"
	"github.com/nao1215/webresearch/internal/report"
)

// Crawler fetches pages breadth-first from the seed URLs.
// *crawler.Spider satisfies this interface.
type Crawler interface {
	Crawl(ctx context.Context, seeds []string, keywords []model.KeywordSpec) (*model.CrawlResult, error)
}

// Scorer filters and ranks crawled pages against the keywords.
// *score.Scorer satisfies this interface.
type Scorer interface {
	StrategyName() string
	Score(ctx context.Context, pages []*model.PageRecord, keywords []model.KeywordSpec) (model.FilteredSet, error)
}

// Summarizer groups scored pages by keyword and summarizes each group.
// *summary.Summarizer satisfies this interface.
type Summarizer interface {
	StrategyName() string
	Summarize(ctx context.Context, filtered model.FilteredSet, keywords []model.KeywordSpec) ([]model.Group, error)
}

// CrawlStep collects pages from the seed URLs.
//
// Design decision: The step wraps the crawler behind a narrow interface
// rather than constructing it, because the crawler's fetch client and
// budgets are wired from configuration by the caller and fakes slot in
// cleanly for tests.
type CrawlStep struct {
	// crawler performs the bounded BFS.
	crawler Crawler

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step.
func NewCrawlStep(crawler Crawler, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		crawler: crawler,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step. On cancellation the partial crawl result is
// kept in the state so the remaining steps can report on it.
func (s *CrawlStep) Do(ctx context.Context, state State) (State, error) {
	result, err := s.crawler.Crawl(ctx, state.Seeds, state.Keywords)
	state.Crawl = result

	if result != nil {
		s.logger.Info("crawl completed",
			"pages_visited", result.PagesVisited,
			"pages_skipped", result.PagesSkipped,
			"errors", len(result.Errors),
		)
	}

	return state, err
}

// ScoreStep filters and ranks the crawled pages per keyword.
type ScoreStep struct {
	// scorer applies the configured relevance strategy.
	scorer Scorer

	// logger for structured logging.
	logger *slog.Logger
}

// ScoreStepOption configures a ScoreStep.
type ScoreStepOption func(*ScoreStep)

// WithScoreLogger sets a custom logger for the score step.
func WithScoreLogger(logger *slog.Logger) ScoreStepOption {
	return func(s *ScoreStep) {
		s.logger = logger
	}
}

// NewScoreStep creates a new scoring step.
func NewScoreStep(scorer Scorer, opts ...ScoreStepOption) *ScoreStep {
	s := &ScoreStep{
		scorer: scorer,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do executes the scoring step. An unreachable scoring backend is fatal;
// there is no silent fallback to another strategy.
func (s *ScoreStep) Do(ctx context.Context, state State) (State, error) {
	state.ScoreStrategy = s.scorer.StrategyName()

	if state.Interrupted {
		s.logger.Debug("skipping scoring, run interrupted")
		return state, nil
	}

	var pages []*model.PageRecord
	if state.Crawl != nil {
		pages = state.Crawl.Pages
	}

	filtered, err := s.scorer.Score(ctx, pages, state.Keywords)
	if err != nil {
		return state, err
	}
	state.Filtered = filtered

	s.logger.Info("scoring completed",
		"strategy", state.ScoreStrategy,
		"pages", len(pages),
		"filtered", len(filtered),
	)

	return state, nil
}

// SummarizeStep groups the filtered pages by keyword and summarizes
// each group.
type SummarizeStep struct {
	// summarizer applies the configured summary strategy.
	summarizer Summarizer

	// logger for structured logging.
	logger *slog.Logger
}

// SummarizeStepOption configures a SummarizeStep.
type SummarizeStepOption func(*SummarizeStep)

// WithSummarizeLogger sets a custom logger for the summarize step.
func WithSummarizeLogger(logger *slog.Logger) SummarizeStepOption {
	return func(s *SummarizeStep) {
		s.logger = logger
	}
}

// NewSummarizeStep creates a new summarization step.
func NewSummarizeStep(summarizer Summarizer, opts ...SummarizeStepOption) *SummarizeStep {
	s := &SummarizeStep{
		summarizer: summarizer,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do executes the summarization step. On cancellation the groups built so
// far are kept in the state. Per-group summary failures never surface
// here; the summarizer degrades those groups to extractive summaries.
func (s *SummarizeStep) Do(ctx context.Context, state State) (State, error) {
	state.SummaryStrategy = s.summarizer.StrategyName()

	if state.Interrupted {
		s.logger.Debug("skipping summarization, run interrupted")
		return state, nil
	}

	groups, err := s.summarizer.Summarize(ctx, state.Filtered, state.Keywords)
	state.Groups = groups
	if err != nil {
		return state, err
	}

	s.logger.Info("summarization completed",
		"strategy", state.SummaryStrategy,
		"groups", len(groups),
	)

	return state, nil
}

// AssembleStep builds the final report from the stage products.
// It runs even after an interruption, turning whatever the earlier steps
// collected into a partial report.
type AssembleStep struct {
	// now supplies the report timestamp, replaceable for tests.
	now func() time.Time

	// logger for structured logging.
	logger *slog.Logger
}

// AssembleStepOption configures an AssembleStep.
type AssembleStepOption func(*AssembleStep)

// WithAssembleNow sets the clock used for the report timestamp.
func WithAssembleNow(now func() time.Time) AssembleStepOption {
	return func(s *AssembleStep) {
		s.now = now
	}
}

// WithAssembleLogger sets a custom logger for the assemble step.
func WithAssembleLogger(logger *slog.Logger) AssembleStepOption {
	return func(s *AssembleStep) {
		s.logger = logger
	}
}

// NewAssembleStep creates a new report assembly step.
func NewAssembleStep(opts ...AssembleStepOption) *AssembleStep {
	s := &AssembleStep{
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return "assemble"
}

// Do executes the assembly step. The clock is read here, outside the pure
// assembler, so report assembly itself stays deterministic.
func (s *AssembleStep) Do(_ context.Context, state State) (State, error) {
	now := s.now()

	state.Report = report.Assemble(report.AssembleInput{
		RunID:           state.RunID,
		GeneratedAt:     now,
		Keywords:        state.Keywords,
		Crawl:           state.Crawl,
		Filtered:        state.Filtered,
		Groups:          state.Groups,
		ScoreStrategy:   state.ScoreStrategy,
		SummaryStrategy: state.SummaryStrategy,
		Duration:        now.Sub(state.StartedAt),
	})

	s.logger.Debug("report assembled",
		"run_id", state.RunID,
		"groups", len(state.Report.Groups),
	)

	return state, nil
}

// DefaultPipeline creates the standard four-stage research pipeline:
// crawl, score, summarize, assemble.
//
// Design decision: We provide a default pipeline because:
// 1. Every run wants the same four stages in the same order
// 2. It reduces boilerplate in the CLI
// 3. Tests for individual stages can still build smaller pipelines
func DefaultPipeline(c Crawler, sc Scorer, su Summarizer, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewCrawlStep(c, WithCrawlLogger(p.logger)),
		NewScoreStep(sc, WithScoreLogger(p.logger)),
		NewSummarizeStep(su, WithSummarizeLogger(p.logger)),
		NewAssembleStep(WithAssembleLogger(p.logger)),
	)

	return p
}
