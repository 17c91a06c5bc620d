package model

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestRunErrorIs tests that RunError matches both its kind and its wrapped error.
func TestRunErrorIs(t *testing.T) {
	t.Parallel()

	err := NewRetrievalError(CauseTimeout, "search timed out", context.DeadlineExceeded)

	if !errors.Is(err, ErrRetrieval) {
		t.Error("expected errors.Is(err, ErrRetrieval)")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected errors.Is(err, context.DeadlineExceeded)")
	}
	if errors.Is(err, ErrSynthesis) {
		t.Error("retrieval error must not match ErrSynthesis")
	}

	var re *RunError
	if !errors.As(err, &re) {
		t.Fatal("expected errors.As to find *RunError")
	}
	if re.Cause != CauseTimeout {
		t.Errorf("expected timeout cause, got %s", re.Cause)
	}
}

// TestRunErrorMessages tests Error and UserMessage formatting.
func TestRunErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *RunError
		wantErr  string
		wantUser string
	}{
		{
			name:     "configuration",
			err:      NewConfigurationError("query must not be empty", nil),
			wantErr:  "configuration error (invalid input): query must not be empty",
			wantUser: "Invalid request: query must not be empty",
		},
		{
			name:     "retrieval with cause",
			err:      NewRetrievalError(CauseAuthentication, "search provider rejected the API key", errors.New("http 401")),
			wantErr:  "retrieval error (authentication): search provider rejected the API key: http 401",
			wantUser: "Search failed (authentication): search provider rejected the API key",
		},
		{
			name:     "synthesis without reason",
			err:      NewSynthesisError(CauseEmptyResponse, "", nil),
			wantErr:  "synthesis error (empty response)",
			wantUser: "Report generation failed (empty response)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.wantErr {
				t.Errorf("Error() = %q, want %q", got, tt.wantErr)
			}
			if got := tt.err.UserMessage(); got != tt.wantUser {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantUser)
			}
			if strings.Contains(tt.err.UserMessage(), "http 401") {
				t.Error("user message must not include the wrapped error")
			}
		})
	}
}

// TestAsRunError tests fallback classification.
func TestAsRunError(t *testing.T) {
	t.Parallel()

	if AsRunError(nil, ErrRetrieval) != nil {
		t.Error("expected nil for nil error")
	}

	plain := errors.New("plain")
	re := AsRunError(plain, ErrSynthesis)
	if !errors.Is(re, ErrSynthesis) || !errors.Is(re, plain) {
		t.Errorf("expected wrapped synthesis error, got %v", re)
	}

	original := NewConfigurationError("bad", nil)
	if AsRunError(original, ErrSynthesis) != original {
		t.Error("expected existing RunError to be returned unchanged")
	}
}
