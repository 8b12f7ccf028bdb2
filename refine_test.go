package wayfare_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/wayfare"
	"github.com/fwojciec/wayfare/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(itinerary string) *wayfare.Conversation {
	var c wayfare.Conversation
	c.Seed(itinerary)
	return &c
}

func TestRefiner_Refine(t *testing.T) {
	t.Parallel()

	var got wayfare.Request
	p := &mock.Provider{
		CompleteFn: func(_ context.Context, req wayfare.Request) (wayfare.Response, error) {
			got = req
			return wayfare.Response{Text: "Day 1: Orsay"}, nil
		},
	}
	conv := seeded("Day 1: Louvre")

	resp, err := wayfare.NewRefiner(p).Refine(context.Background(), conv, "  Swap the Louvre for Orsay ")

	require.NoError(t, err)
	assert.Equal(t, "Day 1: Orsay", resp.Text)

	assert.Equal(t, wayfare.RefineInstruction, got.SystemPrompt)
	assert.Equal(t, wayfare.DefaultModel, got.Model)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.0, *got.Temperature)
	assert.Equal(t, []wayfare.Message{
		wayfare.UserMessage{Text: wayfare.SeedRequest},
		wayfare.AssistantMessage{Text: "Day 1: Louvre"},
		wayfare.UserMessage{Text: "Swap the Louvre for Orsay"},
	}, got.Messages)
	require.NoError(t, got.Validate())

	turns := conv.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, wayfare.RoleAI, turns[0].Role)
	assert.Equal(t, wayfare.RoleHuman, turns[1].Role)
	assert.Equal(t, "Swap the Louvre for Orsay", turns[1].Content)
	assert.Equal(t, wayfare.RoleAI, turns[2].Role)
	assert.Equal(t, "Day 1: Orsay", turns[2].Content)
}

func TestRefiner_SendsEntireHistory(t *testing.T) {
	t.Parallel()

	var (
		last  []wayfare.Message
		calls int
	)
	p := &mock.Provider{
		CompleteFn: func(_ context.Context, req wayfare.Request) (wayfare.Response, error) {
			calls++
			last = req.Messages
			return wayfare.Response{Text: fmt.Sprintf("plan v%d", calls+1)}, nil
		},
	}
	conv := seeded("plan v1")
	r := wayfare.NewRefiner(p)

	for _, req := range []string{"one", "two", "three"} {
		_, err := r.Refine(context.Background(), conv, req)
		require.NoError(t, err)
	}

	assert.Equal(t, 7, conv.Len())
	assert.Equal(t, []wayfare.Message{
		wayfare.UserMessage{Text: wayfare.SeedRequest},
		wayfare.AssistantMessage{Text: "plan v1"},
		wayfare.UserMessage{Text: "one"},
		wayfare.AssistantMessage{Text: "plan v2"},
		wayfare.UserMessage{Text: "two"},
		wayfare.AssistantMessage{Text: "plan v3"},
		wayfare.UserMessage{Text: "three"},
	}, last)
}

func TestRefiner_TranscriptLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  []wayfare.Message
	}{
		{
			name:  "tail starts at a request",
			limit: 3,
			want: []wayfare.Message{
				wayfare.UserMessage{Text: wayfare.SeedRequest},
				wayfare.AssistantMessage{Text: "initial"},
				wayfare.UserMessage{Text: "two"},
				wayfare.AssistantMessage{Text: "reply"},
				wayfare.UserMessage{Text: "three"},
			},
		},
		{
			name:  "leading reply dropped",
			limit: 2,
			want: []wayfare.Message{
				wayfare.UserMessage{Text: wayfare.SeedRequest},
				wayfare.AssistantMessage{Text: "initial"},
				wayfare.UserMessage{Text: "three"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var last wayfare.Request
			p := &mock.Provider{
				CompleteFn: func(_ context.Context, req wayfare.Request) (wayfare.Response, error) {
					last = req
					return wayfare.Response{Text: "reply"}, nil
				},
			}
			conv := seeded("initial")
			r := wayfare.NewRefiner(p, wayfare.WithTranscriptLimit(tt.limit))

			for _, req := range []string{"one", "two", "three"} {
				_, err := r.Refine(context.Background(), conv, req)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, last.Messages)
			require.NoError(t, last.Validate())
			assert.Equal(t, 7, conv.Len())
		})
	}
}

func TestRefiner_EmptyInput(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{
		CompleteFn: func(context.Context, wayfare.Request) (wayfare.Response, error) {
			t.Fatal("provider must not be called")
			return wayfare.Response{}, nil
		},
	}
	conv := seeded("plan")

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := wayfare.NewRefiner(p).Refine(context.Background(), conv, input)
		assert.ErrorIs(t, err, wayfare.ErrEmptyInput)
	}
	assert.Equal(t, 1, conv.Len())
}

func TestRefiner_NotSeeded(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{}
	_, err := wayfare.NewRefiner(p).Refine(context.Background(), &wayfare.Conversation{}, "more food")
	assert.ErrorIs(t, err, wayfare.ErrNotSeeded)
}

func TestRefiner_FailureLeavesConversationUntouched(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	tests := []struct {
		name string
		resp wayfare.Response
		err  error
	}{
		{name: "provider error", err: cause},
		{name: "empty reply", resp: wayfare.Response{Text: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &mock.Provider{
				CompleteFn: func(context.Context, wayfare.Request) (wayfare.Response, error) {
					return tt.resp, tt.err
				},
			}
			conv := seeded("plan")

			_, err := wayfare.NewRefiner(p).Refine(context.Background(), conv, "add a day trip")

			assert.ErrorIs(t, err, wayfare.ErrExternalService)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, 1, conv.Len())
			assert.Equal(t, "AI: plan", conv.Transcript())
		})
	}
}

func TestRefiner_Options(t *testing.T) {
	t.Parallel()

	var got wayfare.Request
	p := &mock.Provider{
		CompleteFn: func(_ context.Context, req wayfare.Request) (wayfare.Response, error) {
			got = req
			return wayfare.Response{Text: "ok"}, nil
		},
	}

	r := wayfare.NewRefiner(p, wayfare.WithRefinerModel("claude-haiku"), wayfare.WithRefinerMaxTokens(1500))
	_, err := r.Refine(context.Background(), seeded("plan"), "cheaper hotels")

	require.NoError(t, err)
	assert.Equal(t, "claude-haiku", got.Model)
	assert.Equal(t, 1500, got.MaxTokens)
}
