package services

import (
	"context"

	"go.uber.org/zap"

	"tripchat/domain/chat"
	"tripchat/pkg/n8n"
)

// ChatService orchestrates one chat turn: persist the user message, forward
// it to the external reasoning pipeline, aggregate usage, persist the reply.
type ChatService struct {
	convs  *ConversationService
	engine *n8n.Client
	logger *zap.Logger
}

// NewChatService creates a chat orchestration service
func NewChatService(convs *ConversationService, engine *n8n.Client, logger *zap.Logger) *ChatService {
	return &ChatService{
		convs:  convs,
		engine: engine,
		logger: logger,
	}
}

// TurnResult is the outcome of one completed chat turn
type TurnResult struct {
	Reply string
	Usage chat.Usage
}

// SendMessage runs a full chat turn. Any step's failure aborts the turn and
// surfaces to the caller; the already persisted user message is not rolled
// back.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID, question, tag, bearer string) (*TurnResult, error) {
	if err := s.convs.AppendMessage(ctx, conversationID, userID, chat.RoleUser, question, chat.Usage{}); err != nil {
		return nil, err
	}

	reply, err := s.engine.Ask(ctx, bearer, question, conversationID, tag)
	if err != nil {
		return nil, err
	}

	usage, err := s.engine.RetrieveUsage(ctx, reply.ExecutionID, tag)
	if err != nil {
		return nil, err
	}

	if err := s.convs.AppendMessage(ctx, conversationID, userID, chat.RoleAI, reply.Output, usage); err != nil {
		return nil, err
	}

	s.logger.Info("Chat turn completed",
		zap.String("conversationID", conversationID),
		zap.String("tag", tag),
		zap.Int("totalTokens", usage.TotalTokens),
	)

	return &TurnResult{Reply: reply.Output, Usage: usage}, nil
}
