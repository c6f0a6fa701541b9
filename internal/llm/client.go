package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"graphmem/pkg/logger"
)

// Roles accepted on messages passed to Generate
const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// Message is a single role-tagged message in a model conversation
type Message struct {
	Role    string
	Content string
}

// Tool represents a function that can be called by the model
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition defines a callable function and its JSON schema
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Strict      bool                   `json:"strict,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Response represents the model's reply
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolCall represents a function call from the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// Client wraps an OpenAI-compatible chat completion endpoint
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New creates a chat completion client. An empty baseURL keeps the default
// OpenAI endpoint.
func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Get(),
	}
}

// Generate sends the messages and declared tools to the model and returns the
// parsed reply. Errors from the endpoint are wrapped and passed through
// without retrying.
func (c *Client) Generate(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	// Convert tools to OpenAI format
	openaiTools := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		fn := openai.FunctionDefinition{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Strict:      tool.Function.Strict,
			Parameters:  tool.Function.Parameters,
		}
		openaiTools = append(openaiTools, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &fn,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMessages,
	}
	if len(openaiTools) > 0 {
		req.Tools = openaiTools
		req.ToolChoice = "auto"
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in model response")
	}

	choice := resp.Choices[0]
	response := &Response{
		Content:   choice.Message.Content,
		ToolCalls: []ToolCall{},
	}

	for _, tc := range choice.Message.ToolCalls {
		args, err := parseJSONArguments(tc.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse arguments for tool %s: %w", tc.Function.Name, err)
		}
		response.ToolCalls = append(response.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	c.logger.Debug("model response generated",
		zap.String("model", c.model),
		zap.Int("tool_calls", len(response.ToolCalls)),
		zap.Bool("has_content", response.Content != ""),
	)

	return response, nil
}

// parseJSONArguments parses the JSON string arguments into a map
func parseJSONArguments(jsonStr string) (map[string]interface{}, error) {
	if jsonStr == "" {
		return make(map[string]interface{}), nil
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &args); err != nil {
		return nil, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return args, nil
}
