package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "tripchat/pkg/errors"
)

// TagNoMCP routes a chat turn through the pipeline that answers without
// calling travel tools. Any other tag selects the tool-enabled pipeline.
const TagNoMCP = "NO_MCP"

// Config holds the workflow engine endpoints and credentials
type Config struct {
	WebhookURLMCP   string
	WebhookURLNoMCP string
	BaseURL         string
	APIKey          string
}

// Client talks to the external workflow engine: it forwards chat turns to
// the tag-selected webhook and queries execution records for usage.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a workflow engine client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Reply is the parsed webhook response for one chat turn
type Reply struct {
	Output      string `json:"output"`
	ExecutionID string `json:"executionID"`
}

// Ask forwards a user message to the reasoning pipeline selected by tag and
// returns the parsed reply. The caller's bearer token is passed through so
// the workflow can call back into the tool endpoints.
func (c *Client) Ask(ctx context.Context, bearer, message, conversationID, tag string) (*Reply, error) {
	webhookURL := c.cfg.WebhookURLMCP
	if tag == TagNoMCP {
		webhookURL = c.cfg.WebhookURLNoMCP
	}

	payload, err := json.Marshal(map[string]string{
		"message":        message,
		"conversationId": conversationID,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("n8n", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError("n8n",
			fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}

	// The webhook replies with a JSON document sent as plain text.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("n8n", err)
	}

	var reply Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, apperrors.NewExternalError("n8n",
			fmt.Errorf("malformed webhook reply: %w", err))
	}
	if reply.Output == "" {
		return nil, apperrors.NewExternalError("n8n",
			fmt.Errorf("webhook returned an empty reply"))
	}

	c.logger.Debug("Webhook reply received",
		zap.String("executionID", reply.ExecutionID),
		zap.String("tag", tag),
	)

	return &reply, nil
}
