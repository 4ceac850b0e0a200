package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tierly/internal/models/request_models"
	"tierly/internal/services"
	"tierly/pkg/utils"
)

type PlanController struct {
	planService         services.PlanServiceInterface
	subscriptionService services.SubscriptionServiceInterface
	catalog             services.CatalogServiceInterface
	log                 *zap.Logger
}

func NewPlanController(
	planService services.PlanServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
	catalog services.CatalogServiceInterface,
	log *zap.Logger,
) *PlanController {
	return &PlanController{
		planService:         planService,
		subscriptionService: subscriptionService,
		catalog:             catalog,
		log:                 log,
	}
}

// ListPlans godoc
// @Summary List available plans
// @Description Active plans with their features, cheapest first
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /plans [get]
func (p *PlanController) ListPlans(c *gin.Context) {
	plans, err := p.planService.ListAvailablePlans(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}

	utils.RespondSuccess(c, plans, "Plans fetched successfully")
}

// Constants godoc
// @Summary Catalog constants
// @Description Free plan id and the available plan and feature ids
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /constants [get]
func (p *PlanController) Constants(c *gin.Context) {
	utils.RespondSuccess(c, p.planService.CatalogConstants(c.Request.Context()), "Constants fetched successfully")
}

// GetMyPlan godoc
// @Summary Current user's plan
// @Description Plan, entitlements, this month's usage and latest subscription of the caller
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /users/me/plan [get]
func (p *PlanController) GetMyPlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	info, err := p.planService.GetUserPlanInfo(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}
	if info == nil {
		utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "User not found")
		return
	}

	utils.RespondSuccess(c, info, "Plan fetched successfully")
}

// UpdateMyPlan godoc
// @Summary Change the caller's plan
// @Description Only the free plan can be selected here; paid plans go through checkout
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body request_models.UpdatePlanRequest true "Target plan"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /users/me/plan [put]
func (p *PlanController) UpdateMyPlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Invalid request format")
		return
	}
	if req.PlanID != p.catalog.FreePlanID() {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Paid plans must be purchased through checkout")
		return
	}

	if err := p.subscriptionService.SetUserPlan(c.Request.Context(), userID, req.PlanID); err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"plan_id": req.PlanID}, "Plan updated successfully")
}
