package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/wordscraper/internal/model"
)

// Step is one stage of a run. It reads what earlier steps left in the
// report and adds its own part.
type Step interface {
	// Do runs the step. A returned error is recorded in the report; the
	// report may still hold partial results.
	Do(ctx context.Context, report *model.RunReport) error

	// Name identifies the step in logs and in RunReport.PerformedSteps.
	Name() string
}

// Conditional is implemented by steps that only apply to some runs, such
// as search on a wordlist run. The pipeline skips them when Applies
// returns false and does not record them as performed.
type Conditional interface {
	Applies(report *model.RunReport) bool
}

// Pipeline runs steps in order against one RunReport.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps running later steps after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps the pipeline going after a failed step. The
// last error is still recorded in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps; they run in the order added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps and stamps report.DateFinished on return.
//
// Cancellation is checked between steps. Inapplicable steps are skipped.
// Without continueOnError the first step error is returned at once.
func (p *Pipeline) Execute(ctx context.Context, report *model.RunReport) error {
	defer report.Finish()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled before step", "step", step.Name(), "reason", err)
			report.SetError(err)
			return err
		}

		if c, ok := step.(Conditional); ok && !c.Applies(report) {
			p.logger.Debug("step skipped", "step", step.Name())
			continue
		}

		p.logger.Info("running step", "step", step.Name(), "seed", report.Seed)
		start := time.Now()

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"seed", report.Seed,
				"elapsed", time.Since(start),
				"error", err,
			)
			report.SetError(err)
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step done", "step", step.Name(), "elapsed", time.Since(start))
		report.AddStep(step.Name())
	}

	return nil
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
