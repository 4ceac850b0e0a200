package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tierly/internal/models/request_models"
	"tierly/internal/services"
	"tierly/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
	log            *zap.Logger
}

func NewAccountController(accountService services.AccountServiceInterface, log *zap.Logger) *AccountController {
	return &AccountController{
		accountService: accountService,
		log:            log,
	}
}

// CreateUser godoc
// @Summary Create the local user record
// @Description Called once after signing up with the auth provider; the id must be the caller's own
// @Tags Users
// @Accept json
// @Produce json
// @Param request body request_models.CreateUserRequest true "User payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /users [post]
func (a *AccountController) CreateUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request_models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeValidation, "Invalid request format")
		return
	}
	if req.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, utils.CodeForbidden, "user_id does not match the authenticated user")
		return
	}

	user, err := a.accountService.CreateUser(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	utils.RespondSuccess(c, user, "User created successfully")
}

// GetMe godoc
// @Summary Current user
// @Tags Users
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /users/me [get]
func (a *AccountController) GetMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := a.accountService.GetUser(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, a.log, err)
		return
	}

	utils.RespondSuccess(c, user, "User fetched successfully")
}
