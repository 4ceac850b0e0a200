package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tierly/pkg/middleware"
	"tierly/pkg/utils"
)

// requireUser aborts with 401 when no authenticated user is on the context.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}
