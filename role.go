package wayfare

// Role identifies who produced a conversation turn or LLM message.
type Role string

const (
	RoleAI    Role = "ai"
	RoleHuman Role = "human"
)

// Label returns the transcript prefix for the role.
func (r Role) Label() string {
	switch r {
	case RoleAI:
		return "AI"
	case RoleHuman:
		return "User"
	default:
		return string(r)
	}
}
