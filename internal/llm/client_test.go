package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompletionRequest struct {
	Model      string        `json:"model"`
	ToolChoice interface{}   `json:"tool_choice"`
	Tools      []fakeTool    `json:"tools"`
	Messages   []fakeMessage `json:"messages"`
}

type fakeTool struct {
	Type     string `json:"type"`
	Function struct {
		Name       string                 `json:"name"`
		Strict     bool                   `json:"strict"`
		Parameters map[string]interface{} `json:"parameters"`
	} `json:"function"`
}

type fakeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func completionResponse(content string, toolCalls ...map[string]interface{}) map[string]interface{} {
	message := map[string]interface{}{
		"role":    "assistant",
		"content": content,
	}
	if len(toolCalls) > 0 {
		message["tool_calls"] = toolCalls
	}
	return map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       message,
				"finish_reason": "stop",
			},
		},
	}
}

func toolCallPayload(id, name, arguments string) map[string]interface{} {
	return map[string]interface{}{
		"id":   id,
		"type": "function",
		"function": map[string]interface{}{
			"name":      name,
			"arguments": arguments,
		},
	}
}

func TestClient_Generate_ParsesToolCalls(t *testing.T) {
	var captured fakeCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("",
			toolCallPayload("call_1", ToolSearch, `{"nodes": ["alice", "acme"], "relations": ["works_at"]}`)))
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/v1", "test-model")
	resp, err := client.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "extract entities"},
		{Role: RoleUser, Content: "alice works at acme"},
	}, DialectStructured.SearchTools())

	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, ToolSearch, resp.ToolCalls[0].Name)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)

	nodes, ok := resp.ToolCalls[0].Arguments["nodes"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"alice", "acme"}, nodes)

	// The request must carry the declared tools and auto tool choice
	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, "auto", captured.ToolChoice)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, ToolSearch, captured.Tools[0].Function.Name)
	assert.True(t, captured.Tools[0].Function.Strict)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, RoleSystem, captured.Messages[0].Role)
}

func TestClient_Generate_ContentOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("plain answer"))
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/v1", "test-model")
	resp, err := client.Generate(context.Background(), []Message{
		{Role: RoleUser, Content: "hello"},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "plain answer", resp.Content)
	assert.Empty(t, resp.ToolCalls)
}

func TestClient_Generate_MalformedArguments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("",
			toolCallPayload("call_1", ToolNoop, `{not valid json`)))
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/v1", "test-model")
	_, err := client.Generate(context.Background(), []Message{
		{Role: RoleUser, Content: "hello"},
	}, DialectDefault.ReconcileTools())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse arguments")
}

func TestClient_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"choices": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/v1", "test-model")
	_, err := client.Generate(context.Background(), []Message{
		{Role: RoleUser, Content: "hello"},
	}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestParseJSONArguments(t *testing.T) {
	args, err := parseJSONArguments(`{"source": "alice", "destination": "acme"}`)
	require.NoError(t, err)
	assert.Equal(t, "alice", args["source"])

	args, err = parseJSONArguments("")
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = parseJSONArguments("{")
	assert.Error(t, err)
}
