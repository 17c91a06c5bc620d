package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/nao1215/riskbrief/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	state     model.State
	doFunc    func(ctx context.Context, run *model.Run) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *model.Run) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// State implements Step.State.
func (m *mockStep) State() model.State {
	return m.state
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stageSteps() (*mockStep, *mockStep, *mockStep) {
	return &mockStep{name: "collect", state: model.StateCollecting},
		&mockStep{name: "retrieve", state: model.StateRetrieving},
		&mockStep{name: "synthesize", state: model.StateSynthesizing}
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithLogger option", func(t *testing.T) {
		t.Parallel()

		logger := discardLogger()
		p := New(WithLogger(logger))
		if p.logger != logger {
			t.Error("expected custom logger")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})
		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		collect, retrieve, synthesize := stageSteps()
		p.AddSteps(collect, retrieve, synthesize)

		want := []string{"collect", "retrieve", "synthesize"}
		if got := p.StepNames(); !slices.Equal(got, want) {
			t.Errorf("StepNames() = %v, want %v", got, want)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps and advances state", func(t *testing.T) {
		t.Parallel()

		var seen []model.State
		record := func(_ context.Context, run *model.Run) error {
			seen = append(seen, run.State)
			return nil
		}
		collect, retrieve, synthesize := stageSteps()
		collect.doFunc, retrieve.doFunc, synthesize.doFunc = record, record, record

		p := New(WithLogger(discardLogger()))
		p.AddSteps(collect, retrieve, synthesize)

		run := model.NewRun()
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantSeen := []model.State{model.StateCollecting, model.StateRetrieving, model.StateSynthesizing}
		if !slices.Equal(seen, wantSeen) {
			t.Errorf("states seen by steps = %v, want %v", seen, wantSeen)
		}
		if run.State != model.StateSynthesizing {
			t.Errorf("State = %v, want synthesizing", run.State)
		}
		if run.Failed() {
			t.Errorf("unexpected run error: %v", run.Err)
		}
	})

	t.Run("stops at first failure and records it", func(t *testing.T) {
		t.Parallel()

		collect, retrieve, synthesize := stageSteps()
		retrieve.doFunc = func(_ context.Context, _ *model.Run) error {
			return model.NewRetrievalError(model.CauseTimeout, "too slow", nil)
		}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(collect, retrieve, synthesize)

		run := model.NewRun()
		err := p.Execute(context.Background(), run)
		if !errors.Is(err, model.ErrRetrieval) {
			t.Fatalf("expected ErrRetrieval, got %v", err)
		}
		if synthesize.callCount != 0 {
			t.Errorf("synthesize called %d times, want 0", synthesize.callCount)
		}
		if run.State != model.StateError {
			t.Errorf("State = %v, want error", run.State)
		}
		if run.Err == nil || run.Err.Cause != model.CauseTimeout {
			t.Errorf("Err = %v, want timeout RunError", run.Err)
		}
	})

	t.Run("classifies plain errors by the failing stage", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			fail  int
			kind  error
			trace []model.State
		}{
			{
				name: "collect",
				fail: 0,
				kind: model.ErrConfiguration,
				trace: []model.State{
					model.StateIdle, model.StateCollecting, model.StateError,
				},
			},
			{
				name: "retrieve",
				fail: 1,
				kind: model.ErrRetrieval,
				trace: []model.State{
					model.StateIdle, model.StateCollecting, model.StateRetrieving, model.StateError,
				},
			},
			{
				name: "synthesize",
				fail: 2,
				kind: model.ErrSynthesis,
				trace: []model.State{
					model.StateIdle, model.StateCollecting, model.StateRetrieving,
					model.StateSynthesizing, model.StateError,
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				collect, retrieve, synthesize := stageSteps()
				steps := []*mockStep{collect, retrieve, synthesize}
				steps[tt.fail].doFunc = func(_ context.Context, _ *model.Run) error {
					return errors.New("boom")
				}

				p := New(WithLogger(discardLogger()))
				p.AddSteps(collect, retrieve, synthesize)

				run := model.NewRun()
				err := p.Execute(context.Background(), run)
				if !errors.Is(err, tt.kind) {
					t.Errorf("error = %v, want kind %v", err, tt.kind)
				}
				if !slices.Equal(run.Trace, tt.trace) {
					t.Errorf("Trace = %v, want %v", run.Trace, tt.trace)
				}
				for i, s := range steps {
					want := 0
					if i <= tt.fail {
						want = 1
					}
					if s.callCount != want {
						t.Errorf("step %s called %d times, want %d", s.name, s.callCount, want)
					}
				}
			})
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		collect, retrieve, synthesize := stageSteps()
		p := New(WithLogger(discardLogger()))
		p.AddSteps(collect, retrieve, synthesize)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		run := model.NewRun()
		err := p.Execute(ctx, run)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if collect.callCount != 0 {
			t.Errorf("collect called %d times, want 0", collect.callCount)
		}
		if run.Err == nil || run.Err.Cause != model.CauseCanceled {
			t.Errorf("Err = %v, want canceled RunError", run.Err)
		}
	})

	t.Run("rejects out of order steps", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(discardLogger()))
		p.AddStep(&mockStep{name: "synthesize", state: model.StateSynthesizing})

		run := model.NewRun()
		err := p.Execute(context.Background(), run)
		if !errors.Is(err, model.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if run.State != model.StateIdle {
			t.Errorf("State = %v, want idle", run.State)
		}
	})
}
