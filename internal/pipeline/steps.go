package pipeline

import (
	"context"
	"errors"

	"github.com/nao1215/riskbrief/internal/collector"
	"github.com/nao1215/riskbrief/internal/model"
)

// errNoSettings is returned when a stage runs before collection succeeded.
var errNoSettings = errors.New("run has no research settings")

// Retriever fetches evidence for one run.
// *search.Retriever satisfies this interface.
type Retriever interface {
	Retrieve(ctx context.Context, settings model.ResearchSettings) ([]model.EvidenceItem, error)
}

// Synthesizer turns settings and evidence into a report.
// *llm.Synthesizer satisfies this interface.
type Synthesizer interface {
	Synthesize(ctx context.Context, settings model.ResearchSettings, evidence []model.EvidenceItem) (model.Report, error)
}

// CollectStep validates the raw input into research settings.
type CollectStep struct {
	input  collector.Input
	limits collector.Limits
}

// NewCollectStep creates a CollectStep for one submission.
func NewCollectStep(input collector.Input, limits collector.Limits) *CollectStep {
	return &CollectStep{input: input, limits: limits}
}

// Name returns the step name.
func (s *CollectStep) Name() string { return "collect" }

// State returns model.StateCollecting.
func (s *CollectStep) State() model.State { return model.StateCollecting }

// Do stores the validated settings on run.
func (s *CollectStep) Do(_ context.Context, run *model.Run) error {
	settings, err := collector.Collect(s.input, s.limits)
	if err != nil {
		return err
	}
	run.Settings = &settings
	return nil
}

// RetrieveStep performs the single search call of a run.
type RetrieveStep struct {
	retriever Retriever
}

// NewRetrieveStep creates a RetrieveStep.
func NewRetrieveStep(retriever Retriever) *RetrieveStep {
	return &RetrieveStep{retriever: retriever}
}

// Name returns the step name.
func (s *RetrieveStep) Name() string { return "retrieve" }

// State returns model.StateRetrieving.
func (s *RetrieveStep) State() model.State { return model.StateRetrieving }

// Do stores the retrieved evidence on run.
func (s *RetrieveStep) Do(ctx context.Context, run *model.Run) error {
	if run.Settings == nil {
		return model.NewRetrievalError(model.CauseUnknown, "", errNoSettings)
	}
	evidence, err := s.retriever.Retrieve(ctx, *run.Settings)
	if err != nil {
		return err
	}
	run.Evidence = evidence
	return nil
}

// SynthesizeStep performs the single completion call of a run.
type SynthesizeStep struct {
	synthesizer Synthesizer
}

// NewSynthesizeStep creates a SynthesizeStep.
func NewSynthesizeStep(synthesizer Synthesizer) *SynthesizeStep {
	return &SynthesizeStep{synthesizer: synthesizer}
}

// Name returns the step name.
func (s *SynthesizeStep) Name() string { return "synthesize" }

// State returns model.StateSynthesizing.
func (s *SynthesizeStep) State() model.State { return model.StateSynthesizing }

// Do stores the generated report on run.
func (s *SynthesizeStep) Do(ctx context.Context, run *model.Run) error {
	if run.Settings == nil {
		return model.NewSynthesisError(model.CauseUnknown, "", errNoSettings)
	}
	report, err := s.synthesizer.Synthesize(ctx, *run.Settings, run.Evidence)
	if err != nil {
		return err
	}
	run.Report = &report
	return nil
}
