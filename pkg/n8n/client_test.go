package n8n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAsk_RoutesByTag(t *testing.T) {
	var mcpHits, noMCPHits int

	mcpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mcpHits++
		w.Write([]byte(`{"output":"with tools","executionID":"e-1"}`))
	}))
	defer mcpServer.Close()

	noMCPServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		noMCPHits++
		w.Write([]byte(`{"output":"without tools","executionID":"e-2"}`))
	}))
	defer noMCPServer.Close()

	client := NewClient(Config{
		WebhookURLMCP:   mcpServer.URL,
		WebhookURLNoMCP: noMCPServer.URL,
	}, zap.NewNop())

	reply, err := client.Ask(context.Background(), "bearer", "hi", "conv-1", "")
	require.NoError(t, err)
	assert.Equal(t, "with tools", reply.Output)

	reply, err = client.Ask(context.Background(), "bearer", "hi", "conv-1", TagNoMCP)
	require.NoError(t, err)
	assert.Equal(t, "without tools", reply.Output)

	assert.Equal(t, 1, mcpHits)
	assert.Equal(t, 1, noMCPHits)
}

func TestAsk_ForwardsBearerAndPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "plan a trip", body["message"])
		assert.Equal(t, "conv-9", body["conversationId"])
		assert.NotEmpty(t, body["timestamp"])

		w.Write([]byte(`{"output":"ok","executionID":"e-3"}`))
	}))
	defer server.Close()

	client := NewClient(Config{WebhookURLMCP: server.URL}, zap.NewNop())

	reply, err := client.Ask(context.Background(), "caller-token", "plan a trip", "conv-9", "")
	require.NoError(t, err)
	assert.Equal(t, "e-3", reply.ExecutionID)
}

func TestAsk_EmptyOutputIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":"","executionID":"e-4"}`))
	}))
	defer server.Close()

	client := NewClient(Config{WebhookURLMCP: server.URL}, zap.NewNop())

	_, err := client.Ask(context.Background(), "b", "hi", "conv-1", "")
	require.Error(t, err)
}

func TestAsk_WebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{WebhookURLMCP: server.URL}, zap.NewNop())

	_, err := client.Ask(context.Background(), "b", "hi", "conv-1", "")
	require.Error(t, err)
}
