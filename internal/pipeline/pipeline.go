package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/webresearch/internal/model"
)

// State carries the accumulated products of a research run between steps.
// Each step receives the state by value and returns a new one with its own
// product filled in, so a step can never clobber what an earlier step
// produced.
//
// Design decision: We pass an immutable value rather than a shared mutable
// report because:
// 1. Each stage has exactly one product, so the data flow stays explicit
// 2. Steps can be tested in isolation by constructing the input state
// 3. A step that fails mid-way still hands back whatever partial product
//    it collected, which the assembler turns into a partial report
type State struct {
	// RunID uniquely identifies this run.
	RunID string

	// StartedAt is when the run began, used to compute the run duration.
	StartedAt time.Time

	// Seeds are the starting URLs for the crawl.
	Seeds []string

	// Keywords are the research keywords in declaration order.
	Keywords []model.KeywordSpec

	// Crawl is the crawl stage product.
	Crawl *model.CrawlResult

	// Filtered is the scoring stage product.
	Filtered model.FilteredSet

	// Groups is the summarization stage product.
	Groups []model.Group

	// Report is the assembled report.
	Report *model.Report

	// ScoreStrategy and SummaryStrategy record which strategies were
	// configured, for the report statistics.
	ScoreStrategy   string
	SummaryStrategy string

	// Interrupted marks that a step was cut short by context
	// cancellation. Later processing steps skip their work; assembly
	// still runs so the partial products become a partial report.
	Interrupted bool
}

// NewState creates the initial state for a run.
func NewState(runID string, startedAt time.Time, seeds []string, keywords []model.KeywordSpec) State {
	return State{
		RunID:     runID,
		StartedAt: startedAt,
		Seeds:     seeds,
		Keywords:  keywords,
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the state
// accumulated by previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., retries, timing)
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the current state, and returns the next state.
	// A context error marks the run as interrupted; any other error
	// aborts the run.
	Do(ctx context.Context, state State) (State, error)

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Run executes all pipeline steps in sequence and returns the final state.
//
// Design decision: A context error is an interruption marker, not a
// failure. The run carries on through the remaining steps so that the
// assembler can still render a report from the partial products; the
// processing steps themselves skip their work once the state is marked
// interrupted. Any other error (an unreachable scoring backend, for
// example) aborts immediately.
//
// On interruption Run returns the final state together with the context
// error, letting the caller distinguish a cut-short run from a clean one.
func (p *Pipeline) Run(ctx context.Context, state State) (State, error) {
	var interruptErr error

	for _, step := range p.steps {
		// A cancellation between steps is treated the same as one
		// inside a step: mark the state and keep going.
		if !state.Interrupted {
			select {
			case <-ctx.Done():
				state.Interrupted = true
				interruptErr = ctx.Err()
				p.logger.Warn("run interrupted",
					"step", step.Name(),
					"reason", ctx.Err(),
				)
			default:
			}
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"run_id", state.RunID,
		)

		next, err := step.Do(ctx, state)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				next.Interrupted = true
				if interruptErr == nil {
					interruptErr = err
				}
				p.logger.Warn("step interrupted",
					"step", step.Name(),
					"reason", err,
				)
				state = next
				continue
			}

			p.logger.Error("step failed",
				"step", step.Name(),
				"run_id", state.RunID,
				"error", err,
			)
			return next, err
		}

		p.logger.Debug("step completed", "step", step.Name())
		state = next
	}

	return state, interruptErr
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
