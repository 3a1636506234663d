package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tripchat/application/ports"
	"tripchat/domain/chat"
	apperrors "tripchat/pkg/errors"

	"github.com/google/uuid"
)

// ConversationService implements ownership-checked CRUD over conversation
// documents plus the startup staleness sweep.
type ConversationService struct {
	convs  ports.ConversationRepository
	logger *zap.Logger
}

// NewConversationService creates a conversation service
func NewConversationService(convs ports.ConversationRepository, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		convs:  convs,
		logger: logger,
	}
}

// Create starts an empty conversation owned by userID
func (s *ConversationService) Create(ctx context.Context, title, userID string) (string, error) {
	conv := &chat.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		StartedAt: time.Now().UTC(),
		Messages:  []chat.Message{},
	}

	if err := s.convs.Create(ctx, conv); err != nil {
		return "", err
	}

	s.logger.Info("Conversation created",
		zap.String("conversationID", conv.ID),
		zap.String("userID", userID),
	)
	return conv.ID, nil
}

// Get returns a conversation after verifying the caller owns it
func (s *ConversationService) Get(ctx context.Context, id, userID string) (*chat.Conversation, error) {
	return s.owned(ctx, id, userID)
}

// List returns every conversation owned by userID
func (s *ConversationService) List(ctx context.Context, userID string) ([]chat.Conversation, error) {
	return s.convs.ListByUser(ctx, userID)
}

// Messages returns a conversation's transcript, ownership-checked
func (s *ConversationService) Messages(ctx context.Context, id, userID string) ([]chat.Message, error) {
	conv, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// AppendMessage appends one message to an owned conversation
func (s *ConversationService) AppendMessage(ctx context.Context, id, userID string, role chat.Role, content string, usage chat.Usage) error {
	conv, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}

	msg := chat.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Usage:     usage,
	}
	return s.convs.AppendMessage(ctx, conv.UserID, conv.ID, msg)
}

// Rename changes an owned conversation's title
func (s *ConversationService) Rename(ctx context.Context, id, newTitle, userID string) error {
	conv, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.convs.UpdateTitle(ctx, conv.UserID, conv.ID, newTitle)
}

// Touch resets an owned conversation's start timestamp to now, deferring
// its eviction by the staleness sweep.
func (s *ConversationService) Touch(ctx context.Context, id, userID string) error {
	conv, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.convs.Touch(ctx, conv.UserID, conv.ID, time.Now().UTC())
}

// Delete removes an owned conversation wholesale
func (s *ConversationService) Delete(ctx context.Context, id, userID string) (bool, error) {
	conv, err := s.owned(ctx, id, userID)
	if err != nil {
		return false, err
	}
	return s.convs.Delete(ctx, conv.UserID, conv.ID)
}

// DeleteStale sweeps every conversation and deletes those whose start
// timestamp is thresholdDays or more whole days old. Runs once at startup.
func (s *ConversationService) DeleteStale(ctx context.Context, thresholdDays int) (int, error) {
	all, err := s.convs.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	deleted := 0
	for _, conv := range all {
		ageDays := int(now.Sub(conv.StartedAt).Hours() / 24)
		if ageDays < thresholdDays {
			continue
		}

		ok, err := s.convs.Delete(ctx, conv.UserID, conv.ID)
		if err != nil {
			s.logger.Error("Failed to delete stale conversation",
				zap.String("conversationID", conv.ID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			deleted++
			s.logger.Info("Stale conversation deleted",
				zap.String("conversationID", conv.ID),
				zap.Int("ageDays", ageDays),
			)
		}
	}

	s.logger.Info("Staleness sweep finished", zap.Int("deleted", deleted))
	return deleted, nil
}

// owned fetches a conversation and verifies the stored owner matches the
// caller, regardless of the operation that follows.
func (s *ConversationService) owned(ctx context.Context, id, userID string) (*chat.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.NewNotFoundError("conversation")
	}
	if conv.UserID != userID {
		return nil, apperrors.NewOwnershipError()
	}
	return conv, nil
}
