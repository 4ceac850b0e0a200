package request_models

type ChatRequest struct {
	Message        string   `json:"message" binding:"required,min=1"`
	Model          string   `json:"model"`
	MaxTokens      int      `json:"max_tokens" binding:"omitempty,min=1,max=1000"`
	Temperature    *float32 `json:"temperature" binding:"omitempty,min=0,max=2"`
	ConversationID string   `json:"conversation_id"`
}
