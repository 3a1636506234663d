package chat

import "time"

// Role identifies the author of a message
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Usage is the reconstructed token and time cost of one AI turn. It is
// derived from the workflow engine's execution record, not authoritative,
// and is stored alongside the message for audit and display.
type Usage struct {
	InputTokens          int     `json:"input_tokens" dynamodbav:"InputTokens"`
	OutputTokens         int     `json:"output_tokens" dynamodbav:"OutputTokens"`
	TotalTokens          int     `json:"total_tokens" dynamodbav:"TotalTokens"`
	ExecutionTimeSeconds float64 `json:"execution_time" dynamodbav:"ExecutionTimeSeconds"`
}

// Message is one entry in a conversation transcript. Messages are embedded
// in their conversation in insertion order and never mutated or reordered.
type Message struct {
	Role      Role      `json:"role" dynamodbav:"Role"`
	Content   string    `json:"content" dynamodbav:"Content"`
	Timestamp time.Time `json:"dateTime" dynamodbav:"Timestamp"`
	Usage     Usage     `json:"usage" dynamodbav:"Usage"`
}

// Conversation is a transcript owned by exactly one user. Ownership is
// checked on every read and mutation against the caller's authenticated
// identity.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"conversationDateStarted"`
	Messages  []Message `json:"messages"`
}
