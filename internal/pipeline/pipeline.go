package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/riskbrief/internal/model"
)

// Step is one stage of a research run.
type Step interface {
	// Do executes the step. Results are stored on run. A returned error
	// aborts the run; it is classified into a *model.RunError by the
	// pipeline when the step did not already do so.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string

	// State is the run state the step executes in.
	State() model.State
}

// Pipeline executes steps in order over a single run.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
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
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in sequence and stops at the first failure.
//
// The run is advanced to each step's state before the step runs. When a step
// fails, or the context is done before a step starts, the failure is recorded
// with run.Fail and returned. A returned error wrapping
// model.ErrInvalidTransition means the steps are out of order.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	for _, step := range p.steps {
		if err := run.Advance(step.State()); err != nil {
			return fmt.Errorf("step %s: %w", step.Name(), err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctxErr,
			)
			return p.fail(run, step, canceledError(step.State(), ctxErr))
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, run); err != nil {
			p.logger.Warn("step failed",
				"step", step.Name(),
				"error", err,
			)
			return p.fail(run, step, err)
		}

		p.logger.Debug("step completed", "step", step.Name())
	}
	return nil
}

// fail records err on run and returns the classified error.
func (p *Pipeline) fail(run *model.Run, step Step, err error) error {
	if failErr := run.Fail(err, kindFor(step.State())); failErr != nil {
		return fmt.Errorf("step %s: %w", step.Name(), errors.Join(err, failErr))
	}
	return run.Err
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

// kindFor maps a stage state to the RunError kind used for unclassified errors.
func kindFor(state model.State) error {
	switch state {
	case model.StateRetrieving:
		return model.ErrRetrieval
	case model.StateSynthesizing:
		return model.ErrSynthesis
	default:
		return model.ErrConfiguration
	}
}

// canceledError reports that the caller went away before a stage started.
func canceledError(state model.State, err error) *model.RunError {
	return &model.RunError{
		Kind:   kindFor(state),
		Cause:  model.CauseCanceled,
		Reason: "the request was cancelled before " + state.String() + " started",
		Err:    err,
	}
}
