package utils

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type ChatMessage struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float32
}

type CompletionResult struct {
	Content string
	// Model is the model that served the request, which may differ from the one asked for.
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatCompleter is the LLM provider seen by the chat proxy.
type ChatCompleter interface {
	Provider() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

type OpenAIChatClient struct {
	client *openai.Client
}

func NewOpenAIChatClient(apiKey string) *OpenAIChatClient {
	return &OpenAIChatClient{client: openai.NewClient(apiKey)}
}

func (c *OpenAIChatClient) Provider() string { return "openai" }

func (c *OpenAIChatClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return CompletionResult{}, fmt.Errorf("%w: openai %d: %s", ErrExternalService, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return CompletionResult{}, fmt.Errorf("%w: openai: %v", ErrExternalService, err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResult{}, fmt.Errorf("%w: openai returned no choices", ErrExternalService)
	}

	return CompletionResult{
		Content:          resp.Choices[0].Message.Content,
		Model:            req.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}
