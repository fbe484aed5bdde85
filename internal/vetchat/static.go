package vetchat

import "context"

const staticAnswer = "I can't reach the veterinary assistant right now. " +
	"For urgent symptoms such as repeated vomiting, difficulty breathing or " +
	"lethargy, please contact a local veterinarian immediately."

// StaticResponder returns a canned safety answer. It is the fallback when no
// provider is configured.
type StaticResponder struct{}

func (StaticResponder) Answer(ctx context.Context, question string, history []Message) (string, error) {
	return staticAnswer, nil
}

func (StaticResponder) Name() string { return "static" }
