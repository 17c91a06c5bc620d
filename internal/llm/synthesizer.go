package llm

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/riskbrief/internal/model"
)

// Synthesizer performs the single completion call of a run.
type Synthesizer struct {
	completer Completer
	timeout   time.Duration
	budget    int
	model     string
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock overrides the clock used for the prompt date and report time.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// WithModelName records the configured model name, used in the report when
// the provider does not echo one.
func WithModelName(name string) Option {
	return func(s *Synthesizer) {
		s.model = name
	}
}

// NewSynthesizer creates a Synthesizer. timeout bounds the completion call
// (zero leaves it to the caller's context); budget is the evidence rune
// budget for the prompt.
func NewSynthesizer(completer Completer, timeout time.Duration, budget int, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		completer: completer,
		timeout:   timeout,
		budget:    budget,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the prompt and makes exactly one completion request.
// Empty evidence is allowed.
func (s *Synthesizer) Synthesize(ctx context.Context, settings model.ResearchSettings, evidence []model.EvidenceItem) (model.Report, error) {
	prompt, used := BuildPrompt(settings, evidence, s.budget, s.now())
	if used < len(evidence) {
		s.logger.Warn("evidence truncated to fit the prompt budget",
			"provided", len(evidence),
			"included", used,
			"budget_runes", s.budget,
		)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		cause := classify(ctx, err)
		s.logger.Warn("completion failed",
			"provider", s.completer.Name(),
			"cause", cause.String(),
			"elapsed", time.Since(start),
			"error", err,
		)
		return model.Report{}, model.NewSynthesisError(cause, reasonFor(cause, s.completer.Name()), err)
	}

	modelName := completion.Model
	if modelName == "" {
		modelName = s.model
	}
	s.logger.Debug("completion finished",
		"provider", s.completer.Name(),
		"model", modelName,
		"evidence_used", used,
		"elapsed", time.Since(start),
	)

	return model.Report{
		Text:         completion.Text,
		Provider:     s.completer.Name(),
		Model:        modelName,
		EvidenceUsed: used,
		GeneratedAt:  s.now(),
	}, nil
}

// classify maps a completion failure to a cause.
func classify(ctx context.Context, err error) model.Cause {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.CauseTimeout
	case errors.Is(err, context.Canceled):
		return model.CauseCanceled
	case errors.Is(err, ErrEmptyResponse):
		return model.CauseEmptyResponse
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return model.CauseAuthentication
		case http.StatusTooManyRequests:
			return model.CauseRateLimited
		default:
			return model.CauseProvider
		}
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return model.CauseTimeout
		}
		return model.CauseNetwork
	default:
		return model.CauseProvider
	}
}

// reasonFor returns the user-facing explanation for a cause.
func reasonFor(cause model.Cause, provider string) string {
	switch cause {
	case model.CauseTimeout:
		return "the " + provider + " model did not answer in time"
	case model.CauseCanceled:
		return "the request was cancelled"
	case model.CauseEmptyResponse:
		return "the " + provider + " model returned an empty report"
	case model.CauseAuthentication:
		return "the " + provider + " API key was rejected; check the key in your environment"
	case model.CauseRateLimited:
		return "the " + provider + " quota or rate limit was exceeded"
	case model.CauseNetwork:
		return "the " + provider + " API could not be reached"
	default:
		return "the " + provider + " API returned an error"
	}
}
