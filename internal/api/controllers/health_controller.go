package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"tierly/pkg/utils"
)

type HealthController struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHealthController(db *gorm.DB, log *zap.Logger) *HealthController {
	return &HealthController{db: db, log: log}
}

// Healthz godoc
// @Summary Liveness and database check
// @Tags Health
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /healthz [get]
func (h *HealthController) Healthz(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeInternal, "database unreachable")
		return
	}

	utils.RespondSuccess(c, gin.H{"status": "ok"}, "healthy")
}
