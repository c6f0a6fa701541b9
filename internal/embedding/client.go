package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"graphmem/pkg/logger"
)

// Client wraps an OpenAI-compatible embedding endpoint
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New creates an embedding client. An empty baseURL keeps the default OpenAI
// endpoint.
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

// Embed returns the embedding vector for a single piece of text
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}

	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}

	c.logger.Debug("embedded text",
		zap.String("model", c.model),
		zap.Int("dimensions", len(vector)))

	return vector, nil
}
