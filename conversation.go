package wayfare

import (
	"fmt"
	"strings"
	"time"
)

// Turn is one entry in a Conversation. Turns are handed out by value and
// never change after they are appended.
type Turn struct {
	Role      Role
	Content   string
	Seq       int // position in the conversation, starting at 0
	Timestamp time.Time
}

// Conversation is the ordered, append-only record of itinerary turns. The
// first turn is always the ai-generated initial itinerary, and human turns
// alternate with ai replies after that.
//
// A Conversation is owned by a single Session and is not safe for
// concurrent use.
type Conversation struct {
	turns []Turn
}

// Seed starts a new history holding only the initial itinerary. Any previous
// turns are discarded.
func (c *Conversation) Seed(itinerary string) {
	c.turns = []Turn{{Role: RoleAI, Content: itinerary, Seq: 0, Timestamp: time.Now()}}
}

// AppendHuman records a user request. The previous turn must be an ai turn.
func (c *Conversation) AppendHuman(text string) error {
	return c.append(RoleHuman, text)
}

// AppendAI records a model reply. The previous turn must be a human turn.
func (c *Conversation) AppendAI(text string) error {
	return c.append(RoleAI, text)
}

func (c *Conversation) append(role Role, text string) error {
	last, ok := c.Last()
	if !ok {
		return ErrNotSeeded
	}
	if last.Role == role {
		return fmt.Errorf("%s turn after %s turn: %w", role, last.Role, ErrTurnOrder)
	}
	c.turns = append(c.turns, Turn{Role: role, Content: text, Seq: len(c.turns), Timestamp: time.Now()})
	return nil
}

// commitExchange appends a human request and its ai reply together, so a
// failed reply never leaves an orphaned human turn behind.
func (c *Conversation) commitExchange(request, reply string) error {
	last, ok := c.Last()
	if !ok {
		return ErrNotSeeded
	}
	if last.Role != RoleAI {
		return fmt.Errorf("human turn after %s turn: %w", last.Role, ErrTurnOrder)
	}
	now := time.Now()
	n := len(c.turns)
	c.turns = append(c.turns,
		Turn{Role: RoleHuman, Content: request, Seq: n, Timestamp: now},
		Turn{Role: RoleAI, Content: reply, Seq: n + 1, Timestamp: now},
	)
	return nil
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Last returns the most recent turn.
func (c *Conversation) Last() (Turn, bool) {
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

// Turns returns a copy of all turns in insertion order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Transcript renders every turn as "User: ..." or "AI: ..." lines in
// insertion order.
func (c *Conversation) Transcript() string {
	return renderTranscript(c.turns)
}

func renderTranscript(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Role.Label())
		b.WriteString(": ")
		b.WriteString(t.Content)
	}
	return b.String()
}
