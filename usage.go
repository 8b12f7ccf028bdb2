package wayfare

// Usage tracks token consumption for one completion.
//
// Providers normalize their API-specific fields: InputTokens is everything
// sent (prompt, system instruction, transcript), OutputTokens is the
// generated text. Providers clamp to zero when upstream data is missing.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
