package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface the orchestrator needs to call a chat
// model. It mirrors the CreateChatCompletion method so any OpenAI-compatible
// backend (or a test stub) can serve as the text provider.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenRouterClient builds a go-openai client pointed at an
// OpenAI-compatible chat-completions endpoint such as OpenRouter.
func NewOpenRouterClient(baseURL, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
