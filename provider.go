package wayfare

import "context"

// Provider is a strategy pattern interface for LLM chat-completion services.
// Complete blocks until the full reply is available. Cancellation flows
// through ctx.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Response is a completed model reply.
type Response struct {
	Text          string
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
	Model         string // model that served the request, as reported upstream
}
