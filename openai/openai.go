// Package openai implements [wayfare.Provider] for the OpenAI Chat
// Completions API using the official github.com/openai/openai-go SDK.
package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fwojciec/wayfare"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-3.5-turbo-0125"

// Interface compliance check.
var _ wayfare.Provider = (*Client)(nil)

// Client implements [wayfare.Provider] for the OpenAI Chat Completions API.
type Client struct {
	client oai.Client
}

// Option configures a [Client].
type Option func(*[]option.RequestOption)

// WithBaseURL sets the API base URL. Useful for testing with httptest and
// for OpenAI-compatible gateways.
func WithBaseURL(url string) Option {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithBaseURL(url))
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithHTTPClient(hc))
	}
}

// New creates a new OpenAI [Client] with the given API key and options.
// SDK retries are disabled; a failed call fails the operation.
func New(apiKey string, opts ...Option) *Client {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	for _, o := range opts {
		o(&reqOpts)
	}
	return &Client{client: oai.NewClient(reqOpts...)}
}

// Complete sends a chat completion request and waits for the full reply.
// Transport and API failures wrap [wayfare.ErrExternalService].
func (c *Client) Complete(ctx context.Context, req wayfare.Request) (wayfare.Response, error) {
	resp, err := c.client.Chat.Completions.New(ctx, BuildParams(req))
	if err != nil {
		return wayfare.Response{}, fmt.Errorf("openai: %w: %w", wayfare.ErrExternalService, err)
	}
	return ConvertResponse(resp)
}

// BuildParams converts a wayfare Request to chat completion parameters.
// Exported for testing.
func BuildParams(req wayfare.Request) oai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	var msgs []oai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, oai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		switch m := msg.(type) {
		case wayfare.UserMessage:
			msgs = append(msgs, oai.UserMessage(m.Text))
		case wayfare.AssistantMessage:
			msgs = append(msgs, oai.AssistantMessage(m.Text))
		}
	}

	params := oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(model),
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = oai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = oai.Float(*req.Temperature)
	}
	return params
}

// ConvertResponse extracts the first choice from a completion.
// Exported for testing.
func ConvertResponse(resp *oai.ChatCompletion) (wayfare.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return wayfare.Response{}, fmt.Errorf("openai: %w: no choices in response", wayfare.ErrExternalService)
	}
	choice := resp.Choices[0]
	return wayfare.Response{
		Text:          choice.Message.Content,
		StopReason:    mapFinishReason(string(choice.FinishReason)),
		RawStopReason: string(choice.FinishReason),
		Model:         resp.Model,
		Usage: wayfare.Usage{
			InputTokens:  max(0, int(resp.Usage.PromptTokens)),
			OutputTokens: max(0, int(resp.Usage.CompletionTokens)),
		},
	}, nil
}

func mapFinishReason(raw string) wayfare.StopReason {
	switch raw {
	case "stop":
		return wayfare.StopEndTurn
	case "length":
		return wayfare.StopLength
	case "content_filter":
		return wayfare.StopFilter
	default:
		return wayfare.StopUnknown
	}
}
