package model

import (
	"errors"
	"fmt"
	"time"
)

// State is the position of a run in its lifecycle.
type State int

const (
	// StateIdle is the initial state of every run.
	StateIdle State = iota

	// StateCollecting means raw input is being turned into ResearchSettings.
	StateCollecting

	// StateRetrieving means the search provider is being called.
	StateRetrieving

	// StateSynthesizing means the completion provider is being called.
	StateSynthesizing

	// StateError means a stage failed. The run still goes on to Presenting.
	StateError

	// StatePresenting is the terminal state; the run is being rendered.
	StatePresenting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateRetrieving:
		return "retrieving"
	case StateSynthesizing:
		return "synthesizing"
	case StateError:
		return "error"
	case StatePresenting:
		return "presenting"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// transitions lists the legal next states for each state.
var transitions = map[State][]State{
	StateIdle:         {StateCollecting},
	StateCollecting:   {StateRetrieving, StateError},
	StateRetrieving:   {StateSynthesizing, StateError},
	StateSynthesizing: {StatePresenting, StateError},
	StateError:        {StatePresenting},
}

// CanTransition reports whether a run may move from one state to another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Report is the text produced by the completion provider.
// The text is opaque: it is displayed verbatim and never parsed.
type Report struct {
	// Text is the generated report.
	Text string `json:"text"`

	// Provider is the completion provider that produced the text.
	Provider string `json:"provider"`

	// Model is the model identifier reported by the provider.
	Model string `json:"model"`

	// EvidenceUsed is the number of evidence items that fit into the prompt.
	EvidenceUsed int `json:"evidence_used"`

	// GeneratedAt is when the completion returned.
	GeneratedAt time.Time `json:"generated_at"`
}

// Run is the explicit state object for one Collect, Retrieve, Synthesize,
// Present cycle. It is created fresh for every submission and discarded
// after rendering.
type Run struct {
	// Settings is set once collection succeeds.
	Settings *ResearchSettings `json:"settings,omitempty"`

	// Evidence is the retrieved evidence in rank order.
	Evidence []EvidenceItem `json:"evidence"`

	// Report is set once synthesis succeeds.
	Report *Report `json:"report,omitempty"`

	// Err is the failure of the stage that aborted the run, if any.
	Err *RunError `json:"-"`

	// ErrorMessage is the user-facing form of Err for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// State is the current lifecycle state.
	State State `json:"state"`

	// Trace lists every state the run has entered, in order.
	Trace []State `json:"trace"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the time from StartedAt to the start of presentation.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// NewRun creates a run in the Idle state.
func NewRun() *Run {
	return &Run{
		Evidence:  make([]EvidenceItem, 0),
		State:     StateIdle,
		Trace:     []State{StateIdle},
		StartedAt: time.Now(),
	}
}

// Advance moves the run to the next state.
// It returns ErrInvalidTransition if the move is not allowed.
func (r *Run) Advance(to State) error {
	if !CanTransition(r.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, to)
	}
	r.State = to
	r.Trace = append(r.Trace, to)
	if to == StatePresenting {
		r.Elapsed = time.Since(r.StartedAt)
	}
	return nil
}

// Fail records err and moves the run to the Error state. Errors that are not
// *RunError are classified with fallback. Evidence gathered before a
// synthesis failure is discarded.
func (r *Run) Fail(err error, fallback error) error {
	re := AsRunError(err, fallback)
	if advErr := r.Advance(StateError); advErr != nil {
		return advErr
	}
	r.Err = re
	r.ErrorMessage = re.UserMessage()
	if errors.Is(re, ErrSynthesis) {
		r.Evidence = make([]EvidenceItem, 0)
	}
	return nil
}

// Failed reports whether the run ended in an error.
func (r *Run) Failed() bool {
	return r.Err != nil
}
