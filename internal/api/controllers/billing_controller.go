package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tierly/internal/models/request_models"
	"tierly/internal/services"
	"tierly/pkg/utils"
)

// Stripe rejects webhook payloads above this size anyway.
const maxWebhookBody = 64 << 10

type BillingController struct {
	billingService services.BillingServiceInterface
	log            *zap.Logger
}

func NewBillingController(billingService services.BillingServiceInterface, log *zap.Logger) *BillingController {
	return &BillingController{
		billingService: billingService,
		log:            log,
	}
}

// CreateCheckout godoc
// @Summary Start a subscription checkout
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body request_models.CheckoutRequest true "Plan and billing cycle"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /billing/checkout [post]
func (b *BillingController) CreateCheckout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Invalid request payload")
		return
	}

	resp, err := b.billingService.CreateCheckoutSession(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}

	utils.RespondSuccess(c, resp, "Checkout session created successfully")
}

// CreatePortal godoc
// @Summary Open the billing portal
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body request_models.PortalRequest false "Return URL"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /billing/portal [post]
func (b *BillingController) CreatePortal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.PortalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Invalid request payload")
			return
		}
	}

	resp, err := b.billingService.CreatePortalSession(c.Request.Context(), userID, req.ReturnURL)
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}

	utils.RespondSuccess(c, resp, "Portal session created successfully")
}

// CancelSubscription godoc
// @Summary Cancel at period end
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body request_models.CancelSubscriptionRequest true "Subscription"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /billing/cancel [post]
func (b *BillingController) CancelSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Invalid request payload")
		return
	}

	if err := b.billingService.CancelSubscription(c.Request.Context(), userID, req.SubscriptionID); err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}

	utils.RespondSuccess(c, nil, "Subscription will be canceled at the end of the period")
}

// Webhook godoc
// @Summary Stripe webhook
// @Description Signature-verified provider notifications. Not authenticated with a bearer token.
// @Tags Billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /billing/webhook [post]
func (b *BillingController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Unreadable body")
		return
	}

	if err := b.billingService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"received": true}, "Webhook processed")
}
