package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/wayfare"
)

// Interface compliance check.
var _ wayfare.Provider = (*Client)(nil)

// Client implements [wayfare.Provider] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends a request to the Anthropic Messages API and waits for the
// full reply. Transport and API failures wrap [wayfare.ErrExternalService].
func (c *Client) Complete(ctx context.Context, req wayfare.Request) (wayfare.Response, error) {
	body, err := c.buildRequestBody(req)
	if err != nil {
		return wayfare.Response{}, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return wayfare.Response{}, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return wayfare.Response{}, fmt.Errorf("anthropic: %w: %w", wayfare.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wayfare.Response{}, parseHTTPError(resp)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return wayfare.Response{}, fmt.Errorf("anthropic: %w: decode response: %w", wayfare.ErrExternalService, err)
	}
	return convertResponse(apiResp), nil
}

func (c *Client) buildRequestBody(req wayfare.Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	apiReq := apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      convertSystem(req.SystemPrompt),
		Messages:    convertMessages(req.Messages),
		Temperature: req.Temperature,
	}
	return json.Marshal(apiReq)
}

// convertSystem converts a system prompt string to an array of content blocks
// suitable for the Anthropic API. Returns nil when the prompt is empty.
func convertSystem(prompt string) []apiContentBlock {
	if prompt == "" {
		return nil
	}
	return []apiContentBlock{{Type: "text", Text: prompt}}
}

func convertMessages(msgs []wayfare.Message) []apiMessage {
	var result []apiMessage
	for _, msg := range msgs {
		switch m := msg.(type) {
		case wayfare.UserMessage:
			result = append(result, apiMessage{
				Role:    "user",
				Content: []apiContentBlock{{Type: "text", Text: m.Text}},
			})
		case wayfare.AssistantMessage:
			result = append(result, apiMessage{
				Role:    "assistant",
				Content: []apiContentBlock{{Type: "text", Text: m.Text}},
			})
		}
	}
	return result
}

func convertResponse(r apiResponse) wayfare.Response {
	var text strings.Builder
	for _, b := range r.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	out := wayfare.Response{
		Text:       text.String(),
		StopReason: wayfare.StopUnknown,
		Model:      r.Model,
		Usage: wayfare.Usage{
			InputTokens:  r.Usage.InputTokens + deref(r.Usage.CacheCreationInputTokens) + deref(r.Usage.CacheReadInputTokens),
			OutputTokens: r.Usage.OutputTokens,
		},
	}
	if r.StopReason != nil {
		out.RawStopReason = *r.StopReason
		out.StopReason = mapStopReason(*r.StopReason)
	}
	return out
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func mapStopReason(raw string) wayfare.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return wayfare.StopEndTurn
	case "max_tokens":
		return wayfare.StopLength
	case "refusal":
		return wayfare.StopFilter
	default:
		return wayfare.StopUnknown
	}
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: %w: HTTP %d (failed to read body: %w)", wayfare.ErrExternalService, resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("anthropic: %w: HTTP %d: %s", wayfare.ErrExternalService, resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %w: %s: %s", wayfare.ErrExternalService, apiErr.Error.Type, apiErr.Error.Message)
}
