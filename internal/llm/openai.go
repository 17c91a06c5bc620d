package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
)

// OpenAI calls the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	opts   CompleterOptions
}

// NewOpenAI constructs an OpenAI completer. SDK retries are disabled so that
// one run makes exactly one request.
func NewOpenAI(opts CompleterOptions) *OpenAI {
	reqOpts := []ooption.RequestOption{
		ooption.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		ooption.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, ooption.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, ooption.WithHTTPClient(opts.HTTPClient))
	}
	return &OpenAI{client: openai.NewClient(reqOpts...), opts: opts}
}

// Name returns "openai".
func (o *OpenAI) Name() string { return "openai" }

// Complete sends one chat completion request.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		Temperature: openai.Float(o.opts.Temperature),
	}
	if o.opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.opts.MaxTokens))
	}

	res, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Completion{}, &StatusError{Provider: o.Name(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return Completion{}, err
	}

	if len(res.Choices) == 0 {
		return Completion{}, ErrEmptyResponse
	}
	text := strings.TrimSpace(res.Choices[0].Message.Content)
	if text == "" {
		return Completion{}, ErrEmptyResponse
	}
	return Completion{Text: text, Model: res.Model}, nil
}
