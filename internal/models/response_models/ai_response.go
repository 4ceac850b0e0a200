package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResponse struct {
	Message        string          `json:"message"`
	Model          string          `json:"model"`
	ConversationID string          `json:"conversation_id,omitempty"`
	TokensUsed     int             `json:"tokens_used"`
	Cost           decimal.Decimal `json:"cost"`
	Usage          TokenUsage      `json:"usage"`
}

type UsageStats struct {
	CurrentUsage int64 `json:"current_usage"`
	Limit        *int  `json:"limit"`
	Remaining    *int  `json:"remaining"`
}

type UsageHistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	TokensUsed int       `json:"tokens_used"`
	CreatedAt  int64     `json:"created_at"`
}
