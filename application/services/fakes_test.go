package services

import (
	"context"
	"time"

	"tripchat/domain/chat"
	apperrors "tripchat/pkg/errors"
)

// memUserRepo is an in-memory ports.UserRepository for tests
type memUserRepo struct {
	users map[string]*chat.User // keyed by username
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*chat.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *chat.User) error {
	if _, exists := r.users[user.Username]; exists {
		return apperrors.NewConflictError("username already exists")
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*chat.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, apperrors.NewNotFoundError("user")
	}
	copied := *user
	return &copied, nil
}

// memConvRepo is an in-memory ports.ConversationRepository for tests
type memConvRepo struct {
	convs map[string]*chat.Conversation // keyed by conversation ID
}

func newMemConvRepo() *memConvRepo {
	return &memConvRepo{convs: make(map[string]*chat.Conversation)}
}

func (r *memConvRepo) Create(ctx context.Context, conv *chat.Conversation) error {
	copied := *conv
	copied.Messages = append([]chat.Message{}, conv.Messages...)
	r.convs[conv.ID] = &copied
	return nil
}

func (r *memConvRepo) FindByID(ctx context.Context, id string) (*chat.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("conversation")
	}
	copied := *conv
	copied.Messages = append([]chat.Message{}, conv.Messages...)
	return &copied, nil
}

func (r *memConvRepo) ListByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	var out []chat.Conversation
	for _, conv := range r.convs {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func (r *memConvRepo) AppendMessage(ctx context.Context, userID, conversationID string, msg chat.Message) error {
	conv, ok := r.convs[conversationID]
	if !ok {
		return apperrors.NewNotFoundError("conversation")
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (r *memConvRepo) UpdateTitle(ctx context.Context, userID, conversationID, title string) error {
	conv, ok := r.convs[conversationID]
	if !ok {
		return apperrors.NewNotFoundError("conversation")
	}
	conv.Title = title
	return nil
}

func (r *memConvRepo) Touch(ctx context.Context, userID, conversationID string, startedAt time.Time) error {
	conv, ok := r.convs[conversationID]
	if !ok {
		return apperrors.NewNotFoundError("conversation")
	}
	conv.StartedAt = startedAt
	return nil
}

func (r *memConvRepo) Delete(ctx context.Context, userID, conversationID string) (bool, error) {
	if _, ok := r.convs[conversationID]; !ok {
		return false, nil
	}
	delete(r.convs, conversationID)
	return true, nil
}

func (r *memConvRepo) ListAll(ctx context.Context) ([]chat.Conversation, error) {
	var out []chat.Conversation
	for _, conv := range r.convs {
		out = append(out, *conv)
	}
	return out, nil
}
