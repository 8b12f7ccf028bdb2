package wayfare

import (
	"context"
	"fmt"
	"strings"
)

// Generation defaults. Temperature 0 keeps output reproducible for a given
// prompt as far as the upstream model allows.
const (
	DefaultModel       = "gpt-3.5-turbo-0125"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.0
)

// Generator turns a prompt into an initial itinerary with a single
// completion call. It never retries.
type Generator struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float64
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorModel overrides DefaultModel. Empty string means the
// provider's own default.
func WithGeneratorModel(model string) GeneratorOption {
	return func(g *Generator) { g.model = model }
}

// WithGeneratorMaxTokens overrides DefaultMaxTokens.
func WithGeneratorMaxTokens(n int) GeneratorOption {
	return func(g *Generator) { g.maxTokens = n }
}

// NewGenerator creates a Generator backed by provider.
func NewGenerator(provider Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{
		provider:    provider,
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate sends prompt and returns the reply. Any failure, including an
// empty reply, wraps ErrGeneration.
func (g *Generator) Generate(ctx context.Context, prompt string) (Response, error) {
	req := Request{
		Model:       g.model,
		Messages:    []Message{UserMessage{Text: prompt}},
		MaxTokens:   g.maxTokens,
		Temperature: Float(g.temperature),
	}
	if err := req.Validate(); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	resp, err := g.provider.Complete(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return Response{}, fmt.Errorf("%w: empty response from model", ErrGeneration)
	}
	return resp, nil
}
