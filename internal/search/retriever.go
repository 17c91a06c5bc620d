package search

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/riskbrief/internal/model"
)

// Retriever performs the single search call of a run.
type Retriever struct {
	searcher Searcher
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. A zero timeout leaves the call bounded
// only by the caller's context; a nil logger uses slog.Default().
func NewRetriever(searcher Searcher, timeout time.Duration, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{searcher: searcher, timeout: timeout, logger: logger}
}

// Retrieve issues one search request for the settings and returns at most
// settings.MaxResults() items in provider rank order. No results is an
// empty slice, not an error. Items outside the allow-list are dropped.
func (r *Retriever) Retrieve(ctx context.Context, settings model.ResearchSettings) ([]model.EvidenceItem, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	domains := settings.TrustedDomains()
	req := Request{
		Query:      settings.Query(),
		Domains:    domains,
		MaxResults: settings.MaxResults(),
		Depth:      settings.SearchDepth(),
	}

	start := time.Now()
	raw, err := r.searcher.Search(ctx, req)
	if err != nil {
		cause := classify(ctx, err)
		r.logger.Warn("search failed",
			"provider", r.searcher.Name(),
			"cause", cause.String(),
			"elapsed", time.Since(start),
			"error", err,
		)
		return nil, model.NewRetrievalError(cause, reasonFor(cause, r.searcher.Name()), err)
	}

	items := make([]model.EvidenceItem, 0, min(len(raw), settings.MaxResults()))
	for _, item := range raw {
		item.Title = CleanTitle(item.Title)
		item.Snippet = CleanText(item.Snippet)
		if item.URL == "" {
			r.logger.Debug("dropping result without URL", "provider", r.searcher.Name(), "title", item.Title)
			continue
		}
		if !item.WithinDomains(domains) {
			r.logger.Warn("dropping result outside trusted domains",
				"provider", r.searcher.Name(),
				"url", item.URL,
			)
			continue
		}
		items = append(items, item)
		if len(items) == settings.MaxResults() {
			break
		}
	}

	r.logger.Debug("search completed",
		"provider", r.searcher.Name(),
		"returned", len(raw),
		"kept", len(items),
		"elapsed", time.Since(start),
	)
	return items, nil
}

// classify maps a search failure to a cause.
func classify(ctx context.Context, err error) model.Cause {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.CauseTimeout
	case errors.Is(err, context.Canceled):
		return model.CauseCanceled
	case errors.As(err, &statusErr):
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden:
			return model.CauseAuthentication
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return model.CauseRateLimited
		default:
			return model.CauseProvider
		}
	case errors.Is(err, ErrMalformedResponse):
		return model.CauseMalformedResponse
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return model.CauseTimeout
		}
		return model.CauseNetwork
	default:
		return model.CauseNetwork
	}
}

// reasonFor returns the user-facing explanation for a cause.
func reasonFor(cause model.Cause, provider string) string {
	switch cause {
	case model.CauseTimeout:
		return "the " + provider + " search did not answer in time"
	case model.CauseCanceled:
		return "the request was cancelled"
	case model.CauseAuthentication:
		return "the " + provider + " API key was rejected; check the key in your environment"
	case model.CauseRateLimited:
		return "the " + provider + " search quota or rate limit was exceeded"
	case model.CauseMalformedResponse:
		return "the " + provider + " search returned a response that could not be read"
	case model.CauseNetwork:
		return "the " + provider + " search could not be reached"
	default:
		return "the " + provider + " search returned an error"
	}
}
