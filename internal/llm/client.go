// Package llm provides a provider-agnostic chat client used to turn a
// natural-language project description into a batch of CPM tasks.
package llm

import (
	"context"
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is implemented by every supported LLM provider.
type Client interface {
	// Chat sends messages to the LLM and returns the raw response text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON sends messages and unmarshals the response into result,
	// tolerating markdown code fences around the JSON body.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}
