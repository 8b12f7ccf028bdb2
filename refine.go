package wayfare

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RefineInstruction is the system prompt for every refinement call.
const RefineInstruction = "You are a helpful travel planning assistant. " +
	"Refine the itinerary based on the user's requests and the previous conversation history."

// SeedRequest opens the history sent on refinement. The initial itinerary is
// an ai turn and chat APIs expect the first message to come from the user.
const SeedRequest = "Plan my trip."

// Refiner applies free-text change requests to an itinerary conversation.
type Refiner struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float64
	limit       int // 0 = unbounded transcript
}

// RefinerOption configures a Refiner.
type RefinerOption func(*Refiner)

// WithRefinerModel overrides DefaultModel.
func WithRefinerModel(model string) RefinerOption {
	return func(r *Refiner) { r.model = model }
}

// WithRefinerMaxTokens sets the output ceiling. Zero uses the provider default.
func WithRefinerMaxTokens(n int) RefinerOption {
	return func(r *Refiner) { r.maxTokens = n }
}

// WithTranscriptLimit bounds the history sent upstream to the initial
// itinerary plus at most the last n turns, starting at a human turn. By
// default the whole history is sent, which grows without limit on long
// sessions.
func WithTranscriptLimit(n int) RefinerOption {
	return func(r *Refiner) { r.limit = n }
}

// NewRefiner creates a Refiner backed by provider.
func NewRefiner(provider Provider, opts ...RefinerOption) *Refiner {
	r := &Refiner{
		provider:    provider,
		model:       DefaultModel,
		temperature: DefaultTemperature,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Refine sends the conversation plus the new request to the model as
// alternating user and assistant messages ending with the request. On
// success the request and reply are appended to conv as one human/ai pair.
// On failure conv is left untouched. Blank input returns ErrEmptyInput
// without calling the provider.
func (r *Refiner) Refine(ctx context.Context, conv *Conversation, input string) (Response, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Response{}, ErrEmptyInput
	}
	if conv.Len() == 0 {
		return Response{}, ErrNotSeeded
	}

	pending := append(conv.Turns(), Turn{Role: RoleHuman, Content: input, Seq: conv.Len(), Timestamp: time.Now()})
	req := Request{
		Model:        r.model,
		SystemPrompt: RefineInstruction,
		Messages:     historyMessages(r.window(pending)),
		MaxTokens:    r.maxTokens,
		Temperature:  Float(r.temperature),
	}

	resp, err := r.provider.Complete(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("refine: %w: %w", ErrExternalService, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return Response{}, fmt.Errorf("refine: empty response from model: %w", ErrExternalService)
	}
	if err := conv.commitExchange(input, resp.Text); err != nil {
		return Response{}, fmt.Errorf("refine: %w", err)
	}
	return resp, nil
}

// window keeps the seed turn and the last r.limit turns. A tail that would
// open with an ai turn loses that turn so roles keep alternating after the
// seed.
func (r *Refiner) window(turns []Turn) []Turn {
	if r.limit <= 0 || len(turns) <= r.limit+1 {
		return turns
	}
	tail := turns[len(turns)-r.limit:]
	if tail[0].Role == RoleAI {
		tail = tail[1:]
	}
	out := make([]Turn, 0, len(tail)+1)
	out = append(out, turns[0])
	return append(out, tail...)
}

// historyMessages maps turns onto chat messages, preceded by SeedRequest.
func historyMessages(turns []Turn) []Message {
	msgs := make([]Message, 0, len(turns)+1)
	msgs = append(msgs, UserMessage{Text: SeedRequest})
	for _, t := range turns {
		if t.Role == RoleAI {
			msgs = append(msgs, AssistantMessage{Text: t.Content})
			continue
		}
		msgs = append(msgs, UserMessage{Text: t.Content})
	}
	return msgs
}
