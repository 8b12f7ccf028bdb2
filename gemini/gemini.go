// Package gemini implements [wayfare.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between wayfare's
// domain types and the Gemini API types.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192
)
