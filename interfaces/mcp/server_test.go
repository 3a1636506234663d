package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer() *Server {
	// The renderer tools need no external backends.
	return NewServer([]Tool{renderChartOptionsTool(), renderMapOptionsTool()}, zap.NewNop())
}

func rpc(t *testing.T, server *Server, body string) rpcResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServer_Initialize(t *testing.T) {
	resp := rpc(t, newTestServer(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	assert.Equal(t, protocolVersion, result["protocolVersion"])
	assert.Contains(t, result, "serverInfo")
}

func TestServer_ToolsList(t *testing.T) {
	resp := rpc(t, newTestServer(), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	tools := result["tools"].([]interface{})
	require.Len(t, tools, 2)

	first := tools[0].(map[string]interface{})
	assert.Equal(t, "render-chart-options", first["name"])
	assert.Contains(t, first, "inputSchema")
}

func TestServer_CallChartTool(t *testing.T) {
	resp := rpc(t, newTestServer(), `{
		"jsonrpc": "2.0", "id": 3, "method": "tools/call",
		"params": {
			"name": "render-chart-options",
			"arguments": {
				"type": "bar",
				"title": "Flight prices",
				"labels": ["Mon", "Tue"],
				"series": [{"name": "EUR", "data": [120, 95]}]
			}
		}
	}`)

	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result toolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	// The result is structured data, never script text.
	var options map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &options))
	assert.Equal(t, "bar", options["chartType"])
	assert.Equal(t, "Flight prices", options["title"])
}

func TestServer_CallChartToolInvalidArgs(t *testing.T) {
	// Mismatched series length is rejected in-band with isError.
	resp := rpc(t, newTestServer(), `{
		"jsonrpc": "2.0", "id": 4, "method": "tools/call",
		"params": {
			"name": "render-chart-options",
			"arguments": {
				"type": "bar",
				"title": "Broken",
				"labels": ["Mon", "Tue", "Wed"],
				"series": [{"name": "EUR", "data": [120]}]
			}
		}
	}`)

	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result toolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.True(t, result.IsError)
}

func TestServer_CallMapTool(t *testing.T) {
	resp := rpc(t, newTestServer(), `{
		"jsonrpc": "2.0", "id": 5, "method": "tools/call",
		"params": {
			"name": "render-map-options",
			"arguments": {
				"centerLatitude": 40.4168,
				"centerLongitude": -3.7038,
				"zoom": 12,
				"markers": [{"latitude": 40.4168, "longitude": -3.7038, "label": "Madrid"}]
			}
		}
	}`)

	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result toolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.False(t, result.IsError)

	var options map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &options))
	assert.Equal(t, float64(12), options["zoom"])
}

func TestServer_CallMapToolRejectsBadCoordinates(t *testing.T) {
	resp := rpc(t, newTestServer(), `{
		"jsonrpc": "2.0", "id": 6, "method": "tools/call",
		"params": {
			"name": "render-map-options",
			"arguments": {
				"centerLatitude": 120.0,
				"centerLongitude": -3.7,
				"zoom": 12,
				"markers": [{"latitude": 40.4, "longitude": -3.7, "label": "x"}]
			}
		}
	}`)

	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result toolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.True(t, result.IsError)
}

func TestServer_UnknownToolIsInvalidParams(t *testing.T) {
	resp := rpc(t, newTestServer(), `{
		"jsonrpc": "2.0", "id": 7, "method": "tools/call",
		"params": {"name": "no-such-tool", "arguments": {}}
	}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestServer_UnknownMethod(t *testing.T) {
	resp := rpc(t, newTestServer(), `{"jsonrpc":"2.0","id":8,"method":"resources/list"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestServer_ParseError(t *testing.T) {
	resp := rpc(t, newTestServer(), `{not json`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeParseError, resp.Error.Code)
}

func TestServer_InvalidVersion(t *testing.T) {
	resp := rpc(t, newTestServer(), `{"jsonrpc":"1.0","id":9,"method":"tools/list"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)
}
