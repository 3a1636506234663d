package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripchat/domain/chat"
	apperrors "tripchat/pkg/errors"
	"tripchat/pkg/n8n"
)

const executionRecordJSON = `{
	"data": {
		"resultData": {
			"runData": {
				"Google Gemini Chat Model": [
					{"data": {"ai_languageModel": [[{"json": {"tokenUsage": {"promptTokens": 50, "completionTokens": 20, "totalTokens": 70}}}]]}}
				],
				"AI Agent1": [{"executionTime": 3000}]
			}
		}
	}
}`

func newChatFixture(t *testing.T, webhook, executions http.HandlerFunc) (*ChatService, *memConvRepo, func()) {
	t.Helper()

	webhookServer := httptest.NewServer(webhook)
	executionsServer := httptest.NewServer(executions)

	repo := newMemConvRepo()
	convs := NewConversationService(repo, zap.NewNop())
	engine := n8n.NewClient(n8n.Config{
		WebhookURLMCP:   webhookServer.URL,
		WebhookURLNoMCP: webhookServer.URL,
		BaseURL:         executionsServer.URL,
		APIKey:          "key",
	}, zap.NewNop())

	cleanup := func() {
		webhookServer.Close()
		executionsServer.Close()
	}

	return NewChatService(convs, engine, zap.NewNop()), repo, cleanup
}

func TestSendMessage_FullTurn(t *testing.T) {
	svc, repo, cleanup := newChatFixture(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"output":"Fly from Madrid on Tuesday.","executionID":"e-42"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/executions/e-42", r.URL.Path)
			w.Write([]byte(executionRecordJSON))
		},
	)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &chat.Conversation{ID: "conv-1", UserID: "user-1"}))

	result, err := svc.SendMessage(ctx, "user-1", "conv-1", "when should I fly?", "", "bearer-token")
	require.NoError(t, err)
	assert.Equal(t, "Fly from Madrid on Tuesday.", result.Reply)
	assert.Equal(t, 50, result.Usage.InputTokens)
	assert.Equal(t, 20, result.Usage.OutputTokens)
	assert.Equal(t, 70, result.Usage.TotalTokens)
	assert.Equal(t, 3.0, result.Usage.ExecutionTimeSeconds)

	// Both sides of the turn were persisted in order, usage on the AI side only.
	conv, err := repo.FindByID(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, chat.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "when should I fly?", conv.Messages[0].Content)
	assert.Zero(t, conv.Messages[0].Usage.TotalTokens)
	assert.Equal(t, chat.RoleAI, conv.Messages[1].Role)
	assert.Equal(t, 70, conv.Messages[1].Usage.TotalTokens)
}

func TestSendMessage_OwnershipCheckedBeforeEngineCall(t *testing.T) {
	engineCalled := false
	svc, repo, cleanup := newChatFixture(t,
		func(w http.ResponseWriter, r *http.Request) {
			engineCalled = true
			w.Write([]byte(`{"output":"x","executionID":"e"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(executionRecordJSON))
		},
	)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &chat.Conversation{ID: "conv-1", UserID: "owner"}))

	_, err := svc.SendMessage(ctx, "intruder", "conv-1", "hi", "", "bearer")
	require.Error(t, err)
	assert.True(t, apperrors.IsOwnership(err))
	assert.False(t, engineCalled)

	conv, err := repo.FindByID(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)
}

func TestSendMessage_EngineFailureKeepsUserMessage(t *testing.T) {
	svc, repo, cleanup := newChatFixture(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(executionRecordJSON))
		},
	)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &chat.Conversation{ID: "conv-1", UserID: "user-1"}))

	_, err := svc.SendMessage(ctx, "user-1", "conv-1", "hello?", "", "bearer")
	require.Error(t, err)

	// The user message stays; no reply was recorded.
	conv, err := repo.FindByID(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, chat.RoleUser, conv.Messages[0].Role)
}
