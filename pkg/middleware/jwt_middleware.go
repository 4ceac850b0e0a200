package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tierly/pkg/utils"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

func JWTAuthMiddleware(verifier utils.TokenVerifier) gin.HandlerFunc {

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Authorization header missing or invalid")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		identity, err := verifier.Verify(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired token")
			return
		}

		// Pass user information to the next handler
		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextEmail, identity.Email)
		c.Next()
	}
}

// DevAuthMiddleware authenticates every request as one fixed user. Local development only.
func DevAuthMiddleware(userID uuid.UUID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, email)
		c.Next()
	}
}

// UserID returns the authenticated caller set by one of the auth middlewares.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
