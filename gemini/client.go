package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/wayfare"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ wayfare.Provider = (*Client)(nil)

// Client implements [wayfare.Provider] for the Google Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	baseURL string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID used when a request leaves it empty.
// Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL overrides the Gemini API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Complete sends a request to the Gemini API and waits for the full reply.
func (c *Client) Complete(ctx context.Context, req wayfare.Request) (wayfare.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, ConvertMessages(req.Messages), BuildConfig(req))
	if err != nil {
		return wayfare.Response{}, fmt.Errorf("gemini: %w: %w", wayfare.ErrExternalService, err)
	}
	return ConvertResponse(resp)
}

// BuildConfig converts request parameters to a genai config.
// Exported for testing.
func BuildConfig(req wayfare.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts wayfare Messages to genai Contents.
// Exported for testing.
func ConvertMessages(msgs []wayfare.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case wayfare.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Text}},
			})
		case wayfare.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: m.Text}},
			})
		}
	}
	return result
}

// ConvertResponse extracts the reply from the first candidate. Thought parts
// are skipped. A response with no candidates is an error; it usually means
// the prompt itself was blocked.
// Exported for testing.
func ConvertResponse(resp *genai.GenerateContentResponse) (wayfare.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		reason := "no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + string(resp.PromptFeedback.BlockReason)
		}
		return wayfare.Response{}, fmt.Errorf("gemini: %w: %w", wayfare.ErrExternalService, errors.New(reason))
	}

	cand := resp.Candidates[0]
	var text string
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			text += p.Text
		}
	}

	out := wayfare.Response{
		Text:          text,
		StopReason:    mapFinishReason(cand.FinishReason),
		RawStopReason: string(cand.FinishReason),
		Model:         resp.ModelVersion,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = wayfare.Usage{
			InputTokens:  max(0, int(u.PromptTokenCount)),
			OutputTokens: max(0, int(u.CandidatesTokenCount)+int(u.ThoughtsTokenCount)),
		}
	}
	return out, nil
}

func mapFinishReason(r genai.FinishReason) wayfare.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return wayfare.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return wayfare.StopLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return wayfare.StopFilter
	default:
		return wayfare.StopUnknown
	}
}
