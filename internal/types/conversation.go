package types

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single immutable entry in a thread.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Thread is a conversation about one recipe. Messages are ordered by
// Position. Positions keep increasing after old messages are trimmed.
type Thread struct {
	ID            string    `json:"id"`
	RecipeContext string    `json:"recipe_context,omitempty"`
	Messages      []Message `json:"messages"`
}

// NextPosition returns the position for the next appended message.
func (t Thread) NextPosition() int {
	if len(t.Messages) == 0 {
		return 0
	}
	return t.Messages[len(t.Messages)-1].Position + 1
}
