// Package llm provides chat-completion clients used for answer synthesis.
//
// Retrieval works without a language model; only Ask needs one. The client
// interface is deliberately small so tests can swap in an httptest-backed
// server or a canned mock.
package llm

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client generates chat completions.
type Client interface {
	// Chat sends the messages and returns the assistant's reply text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Close cleans up any resources.
	Close() error
}
