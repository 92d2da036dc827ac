// Package llm wraps the chat-completion client used by the persona feature.
// Gemini is reached through its OpenAI-compatible endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type GeminiClient struct {
	client *openai.Client
	model  string
}

// NewGemini builds a client for the given key, model and base URL. A missing
// key is a configuration error the caller should treat as fatal.
func NewGemini(apiKey, model, baseURL string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not set")
	}
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &GeminiClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Generate sends one system+user exchange and returns the raw completion
// text. JSON-object response format is requested so the persona service can
// parse the result directly.
func (c *GeminiClient) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.9,
		TopP:        0.95,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
