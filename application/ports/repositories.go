package ports

import (
	"context"
	"time"

	"tripchat/domain/chat"
)

// UserRepository persists registered accounts
type UserRepository interface {
	// Create stores a new user, failing with a conflict error when the
	// username is already taken.
	Create(ctx context.Context, user *chat.User) error
	// FindByUsername returns the user or a not found error.
	FindByUsername(ctx context.Context, username string) (*chat.User, error)
}

// ConversationRepository persists conversation documents with their embedded
// messages. Ownership is not enforced here; the service layer compares the
// stored owner against the caller before every mutation or read.
type ConversationRepository interface {
	Create(ctx context.Context, conv *chat.Conversation) error
	// FindByID looks a conversation up by its identifier alone.
	FindByID(ctx context.Context, id string) (*chat.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]chat.Conversation, error)
	// AppendMessage adds a message to the end of the transcript.
	AppendMessage(ctx context.Context, userID, conversationID string, msg chat.Message) error
	UpdateTitle(ctx context.Context, userID, conversationID, title string) error
	// Touch rewrites the start timestamp used by the staleness sweep.
	Touch(ctx context.Context, userID, conversationID string, startedAt time.Time) error
	// Delete removes a conversation wholesale, reporting whether it existed.
	Delete(ctx context.Context, userID, conversationID string) (bool, error)
	// ListAll returns every stored conversation, for the staleness sweep.
	ListAll(ctx context.Context) ([]chat.Conversation, error)
}
