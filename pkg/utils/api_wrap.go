package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status    string      `json:"status"`
	Code      int         `json:"code"`
	ErrorCode string      `json:"error_code,omitempty"`
	Message   string      `json:"message,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeUpgradeRequired = "UPGRADE_REQUIRED"
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
	CodeUserExists      = "USER_EXISTS"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, errorCode string, message string) {
	c.AbortWithStatusJSON(code, APIResponse{
		Status:    "error",
		Code:      code,
		ErrorCode: errorCode,
		Message:   message,
		TraceID:   traceID(c),
	})
}

func respondErrorWithData(c *gin.Context, code int, errorCode string, message string, data interface{}) {
	c.AbortWithStatusJSON(code, APIResponse{
		Status:    "error",
		Code:      code,
		ErrorCode: errorCode,
		Message:   message,
		TraceID:   traceID(c),
		Data:      data,
	})
}

// HandleServiceError maps service errors onto the response envelope.
// Plan restrictions get their own error codes so clients can show an upgrade prompt.
func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	var limitErr *UsageLimitError

	switch {
	case errors.As(err, &limitErr):
		respondErrorWithData(c, http.StatusForbidden, CodeQuotaExceeded, "Monthly usage limit reached", gin.H{
			"feature_id":    limitErr.FeatureID,
			"current_usage": limitErr.Current,
			"limit":         limitErr.Limit,
		})
	case errors.Is(err, ErrQuotaExceeded):
		RespondError(c, http.StatusForbidden, CodeQuotaExceeded, "Monthly usage limit reached")
	case errors.Is(err, ErrUpgradeRequired):
		RespondError(c, http.StatusForbidden, CodeUpgradeRequired, "This feature requires a plan upgrade")
	case errors.Is(err, ErrRecordNotFound):
		RespondError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, ErrStripeCustomerMissing):
		RespondError(c, http.StatusNotFound, CodeNotFound, "Billing customer not found")
	case errors.Is(err, ErrValidation):
		RespondError(c, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, ErrUnauthenticated):
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
	case errors.Is(err, ErrUserAlreadyExists):
		RespondError(c, http.StatusConflict, CodeUserExists, "User already exists")
	case errors.Is(err, ErrExternalService):
		log.Error("external service error", zap.String("trace_id", traceID(c)), zap.Error(err))
		RespondError(c, http.StatusBadGateway, CodeExternalService, "Upstream service unavailable")
	default:
		log.Error("internal error", zap.String("trace_id", traceID(c)), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
	}
}
