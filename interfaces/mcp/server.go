package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "tripchat/pkg/errors"
)

// JSON-RPC 2.0 error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

const protocolVersion = "2024-11-05"

// Tool is one callable tool exposed over the protocol
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     func(ctx context.Context, args json.RawMessage) (interface{}, error) `json:"-"`
}

// Server answers JSON-RPC 2.0 requests over a single HTTP endpoint. It
// implements the initialize, tools/list, and tools/call methods.
type Server struct {
	tools  []Tool
	byName map[string]*Tool
	logger *zap.Logger
}

// NewServer creates a protocol server exposing the given tools
func NewServer(tools []Tool, logger *zap.Logger) *Server {
	byName := make(map[string]*Tool, len(tools))
	for i := range tools {
		byName[tools[i].Name] = &tools[i]
	}
	return &Server{
		tools:  tools,
		byName: byName,
		logger: logger,
	}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// toolContent is one entry in a tool call result
type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResult is the tools/call result envelope. Tool failures are reported
// in-band with IsError rather than as protocol errors.
type toolResult struct {
	Content []toolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ServeHTTP handles one JSON-RPC request per POST
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "parse error"},
		})
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidRequest, Message: "invalid request"},
		})
		return
	}

	s.logger.Debug("Protocol request", zap.String("method", req.Method))

	switch req.Method {
	case "initialize":
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]interface{}{
				"protocolVersion": protocolVersion,
				"capabilities": map[string]interface{}{
					"tools": map[string]interface{}{},
				},
				"serverInfo": map[string]string{
					"name":    "tripchat-tools",
					"version": "1.0.0",
				},
			},
		})

	case "notifications/initialized":
		// Notification; nothing to answer.
		w.WriteHeader(http.StatusAccepted)

	case "tools/list":
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{"tools": s.tools},
		})

	case "tools/call":
		s.handleCall(w, r.Context(), req)

	default:
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method},
		})
	}
}

func (s *Server) handleCall(w http.ResponseWriter, ctx context.Context, req rpcRequest) {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidParams, Message: "invalid tool call params"},
		})
		return
	}

	tool, ok := s.byName[params.Name]
	if !ok {
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidParams, Message: "unknown tool: " + params.Name},
		})
		return
	}

	result, err := tool.Handler(ctx, params.Arguments)
	if err != nil {
		message := err.Error()
		if appErr := apperrors.GetAppError(err); appErr != nil {
			message = appErr.Message
		}
		s.logger.Warn("Tool call failed",
			zap.String("tool", params.Name),
			zap.Error(err),
		)
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: toolResult{
				Content: []toolContent{{Type: "text", Text: message}},
				IsError: true,
			},
		})
		return
	}

	text, err := json.Marshal(result)
	if err != nil {
		s.respond(w, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInternalError, Message: "failed to encode tool result"},
		})
		return
	}

	s.respond(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: toolResult{
			Content: []toolContent{{Type: "text", Text: string(text)}},
		},
	})
}

func (s *Server) respond(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
