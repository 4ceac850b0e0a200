package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tierly/internal/models/request_models"
	"tierly/internal/services"
	"tierly/pkg/utils"
)

type AIController struct {
	aiService services.AIServiceInterface
	log       *zap.Logger
}

func NewAIController(aiService services.AIServiceInterface, log *zap.Logger) *AIController {
	return &AIController{
		aiService: aiService,
		log:       log,
	}
}

// Chat godoc
// @Summary Metered AI chat
// @Description Forwards one message to the LLM provider when the caller's plan allows it
// @Tags AI
// @Accept json
// @Produce json
// @Param request body request_models.ChatRequest true "Chat message"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse "UPGRADE_REQUIRED or QUOTA_EXCEEDED"
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /ai/chat [post]
func (a *AIController) Chat(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Invalid request format")
		return
	}

	resp, err := a.aiService.Chat(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	utils.RespondSuccess(c, resp, "Chat completed")
}

// Usage godoc
// @Summary AI usage this month
// @Tags AI
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /ai/usage [get]
func (a *AIController) Usage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stats, err := a.aiService.UsageStats(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	utils.RespondSuccess(c, stats, "Usage fetched successfully")
}

// History godoc
// @Summary Recent AI requests
// @Tags AI
// @Produce json
// @Param limit query int false "Max entries (default 20, max 100)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /ai/history [get]
func (a *AIController) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := a.aiService.History(c.Request.Context(), userID, limit)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	utils.RespondSuccess(c, history, "History fetched successfully")
}
