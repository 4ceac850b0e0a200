package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiChatClient implements ChatCompleter using Google's Gemini models
type GeminiChatClient struct {
	client *genai.Client
	model  string
}

// NewGeminiChatClient creates a new Gemini client; model is used when a request does not name one.
func NewGeminiChatClient(ctx context.Context, apiKey, model string) (*GeminiChatClient, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiChatClient{client: client, model: model}, nil
}

func (c *GeminiChatClient) Provider() string { return "gemini" }

func (c *GeminiChatClient) Close() error { return c.client.Close() }

func (c *GeminiChatClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	modelName := req.Model
	if modelName == "" || !strings.HasPrefix(modelName, "gemini") {
		modelName = c.model
	}

	m := c.client.GenerativeModel(modelName)
	m.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	parts := make([]genai.Part, 0, len(req.Messages))
	for _, msg := range req.Messages {
		parts = append(parts, genai.Text(msg.Content))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("%w: gemini: %v", ErrExternalService, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return CompletionResult{}, fmt.Errorf("%w: gemini returned no content", ErrExternalService)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	result := CompletionResult{Content: sb.String(), Model: modelName}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}
