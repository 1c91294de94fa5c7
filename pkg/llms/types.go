// Package llms provides completion-service providers for the agent loop.
package llms

import "context"

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage is a convenience constructor for system turns.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage is a convenience constructor for user turns.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage is a convenience constructor for assistant turns.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Provider is the completion-service collaborator. Generate returns
// the completion text and the total tokens the call consumed.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, int, error)
}
