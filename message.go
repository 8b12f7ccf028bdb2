package wayfare

// Message is a sealed interface representing a message sent to an LLM provider.
// The unexported marker method prevents external implementations.
// Role() returns the message's role without requiring a type switch.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage represents a message from the user.
type UserMessage struct {
	Text string
}

func (UserMessage) isMessage() {}

// Role returns RoleHuman.
func (UserMessage) Role() Role { return RoleHuman }

// AssistantMessage represents a message previously produced by the model.
type AssistantMessage struct {
	Text string
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAI.
func (AssistantMessage) Role() Role { return RoleAI }

// Interface compliance checks.
var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}
)
