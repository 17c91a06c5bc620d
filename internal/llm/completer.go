package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nao1215/riskbrief/internal/config"
)

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("completion contained no text")

// Prompt is the single request sent to the completion provider.
type Prompt struct {
	// System sets the assistant's role and guidelines.
	System string

	// User carries the query, instructions and evidence.
	User string
}

// Completion is the provider's answer.
type Completion struct {
	// Text is the generated report.
	Text string

	// Model is the model that produced the text, as reported by the provider.
	Model string
}

// Completer is a completion provider adapter. Implementations make exactly
// one API request per call.
type Completer interface {
	// Name returns the provider identifier.
	Name() string

	// Complete sends the prompt and returns the generated text.
	Complete(ctx context.Context, p Prompt) (Completion, error)
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	// Provider is the provider name.
	Provider string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Err is the SDK error.
	Err error
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %v", e.Provider, e.StatusCode, e.Err)
}

// Unwrap returns the SDK error.
func (e *StatusError) Unwrap() error { return e.Err }

// CompleterOptions are the provider-independent request settings.
type CompleterOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

// NewCompleter builds the completer selected in the configuration.
func NewCompleter(cfg *config.Config, client *http.Client) (Completer, error) {
	opts := CompleterOptions{
		APIKey:      cfg.CompletionAPIKey,
		BaseURL:     cfg.CompletionBaseURL,
		Model:       cfg.Model(),
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.Temperature,
		HTTPClient:  client,
	}
	switch cfg.CompletionProvider {
	case config.CompletionProviderOpenAI:
		return NewOpenAI(opts), nil
	case config.CompletionProviderAnthropic:
		return NewAnthropic(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownCompletionProvider, cfg.CompletionProvider)
	}
}
