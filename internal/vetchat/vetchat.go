// Package vetchat answers pet-health questions. The primary responder calls
// the Gemini generateContent API; a static responder serves as fallback when
// no API key is configured or the provider fails.
package vetchat

import "context"

// Message is one turn in the chat history.
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Responder produces an answer for a question given prior history.
type Responder interface {
	Answer(ctx context.Context, question string, history []Message) (string, error)
	Name() string
}
