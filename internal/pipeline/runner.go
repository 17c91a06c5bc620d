package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/riskbrief/internal/collector"
	"github.com/nao1215/riskbrief/internal/model"
	"github.com/nao1215/riskbrief/internal/report"
)

// Runner wires the collect, retrieve and synthesize steps into one research
// cycle and presents the outcome.
type Runner struct {
	retriever   Retriever
	synthesizer Synthesizer
	limits      collector.Limits
	logger      *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger used by the runner and its pipeline.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner.
func NewRunner(retriever Retriever, synthesizer Synthesizer, limits collector.Limits, opts ...RunnerOption) *Runner {
	r := &Runner{
		retriever:   retriever,
		synthesizer: synthesizer,
		limits:      limits,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run executes one research cycle for in and writes the result with w.
//
// Stage failures never escape as errors: they are recorded in the returned
// run's Err and presented like a report. The returned error is non-nil only
// when presenting fails or the run could not reach the Presenting state.
func (r *Runner) Run(ctx context.Context, in collector.Input, w report.Writer) (*model.Run, error) {
	run := model.NewRun()

	p := New(WithLogger(r.logger))
	p.AddSteps(
		NewCollectStep(in, r.limits),
		NewRetrieveStep(r.retriever),
		NewSynthesizeStep(r.synthesizer),
	)

	if err := p.Execute(ctx, run); err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			return run, err
		}
		r.logger.Info("research run failed",
			"state", run.State.String(),
			"error", err,
		)
	}

	if err := run.Advance(model.StatePresenting); err != nil {
		return run, err
	}

	r.logger.Info("presenting run",
		"failed", run.Failed(),
		"evidence", len(run.Evidence),
		"elapsed", run.Elapsed.String(),
	)

	if w == nil {
		return run, nil
	}
	if _, err := w.Write(run); err != nil {
		return run, fmt.Errorf("present run: %w", err)
	}
	return run, nil
}
