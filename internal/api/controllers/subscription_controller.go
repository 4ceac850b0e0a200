package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tierly/internal/services"
	"tierly/pkg/utils"
)

type SubscriptionController struct {
	subscriptionService services.SubscriptionServiceInterface
	log                 *zap.Logger
}

func NewSubscriptionController(subscriptionService services.SubscriptionServiceInterface, log *zap.Logger) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// DowngradeToFree godoc
// @Summary Move to the free plan
// @Description Sets the caller's plan to free and cancels open subscriptions in one transaction
// @Tags Subscription
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscription/free [post]
func (s *SubscriptionController) DowngradeToFree(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := s.subscriptionService.DowngradeToFree(c.Request.Context(), userID); err != nil {
		utils.HandleServiceError(c, s.log, err)
		return
	}

	utils.RespondSuccess(c, nil, "Switched to the free plan")
}

// Status godoc
// @Summary Subscription status
// @Tags Subscription
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscription/status [get]
func (s *SubscriptionController) Status(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	status, err := s.subscriptionService.Status(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, s.log, err)
		return
	}

	utils.RespondSuccess(c, status, "Subscription status fetched successfully")
}
