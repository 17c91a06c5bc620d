package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic calls the Anthropic messages API.
type Anthropic struct {
	client anthropic.Client
	opts   CompleterOptions
}

// NewAnthropic constructs an Anthropic completer. SDK retries are disabled so
// that one run makes exactly one request.
func NewAnthropic(opts CompleterOptions) *Anthropic {
	reqOpts := []aoption.RequestOption{
		aoption.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		aoption.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, aoption.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, aoption.WithHTTPClient(opts.HTTPClient))
	}
	return &Anthropic{client: anthropic.NewClient(reqOpts...), opts: opts}
}

// Name returns "anthropic".
func (a *Anthropic) Name() string { return "anthropic" }

// Complete sends one messages request.
func (a *Anthropic) Complete(ctx context.Context, p Prompt) (Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.opts.Model),
		MaxTokens: int64(a.opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
		Temperature: anthropic.Float(a.opts.Temperature),
	}
	if strings.TrimSpace(p.System) != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return Completion{}, &StatusError{Provider: a.Name(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return Completion{}, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return Completion{}, ErrEmptyResponse
	}
	return Completion{Text: out, Model: string(msg.Model)}, nil
}
