package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nao1215/riskbrief/internal/config"
	"github.com/nao1215/riskbrief/internal/model"
)

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 2 << 20

// ErrMalformedResponse is returned when a provider answers 2xx with a body
// that cannot be decoded.
var ErrMalformedResponse = errors.New("malformed search response")

// Request is one search call.
type Request struct {
	// Query is the research question.
	Query string

	// Domains restricts results to these hosts. Empty means unrestricted.
	Domains []string

	// MaxResults is the number of results to ask for.
	MaxResults int

	// Depth is the provider effort level.
	Depth model.SearchDepth
}

// Searcher is a search provider adapter. Implementations make exactly one
// HTTP request per call and do not retry.
type Searcher interface {
	// Name returns the provider identifier used in logs and reports.
	Name() string

	// Search runs the query and returns raw results in provider rank order.
	Search(ctx context.Context, req Request) ([]model.EvidenceItem, error)
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	// Provider is the provider name.
	Provider string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the beginning of the response body, for logs.
	Body string
}

// Error implements error.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: http %d", e.Provider, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// newStatusError builds a StatusError keeping only the first line of the body.
func newStatusError(provider string, status int, body []byte) *StatusError {
	text := strings.TrimSpace(string(body))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if r := []rune(text); len(r) > 200 {
		text = string(r[:200]) + "..."
	}
	return &StatusError{Provider: provider, StatusCode: status, Body: text}
}

// NewSearcher builds the searcher selected in the configuration.
func NewSearcher(cfg *config.Config, client *http.Client) (Searcher, error) {
	switch cfg.SearchProvider {
	case config.SearchProviderTavily:
		return NewTavily(cfg.SearchAPIKey, cfg.SearchBaseURL, client), nil
	case config.SearchProviderBrave:
		return NewBrave(cfg.SearchAPIKey, cfg.SearchBaseURL, client), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSearchProvider, cfg.SearchProvider)
	}
}
