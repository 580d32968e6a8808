package completion

import "context"

// Role tags a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn sent to the completion service.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Gateway abstracts the text-generation service: an ordered list of messages
// in, a single text completion out. Prompt engineering lives with the
// callers; implementations only carry the transport.
type Gateway interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
