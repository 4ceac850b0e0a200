package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tierly/pkg/utils"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func newRouter(t *testing.T, auth gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceIDMiddleware(), auth)
	r.GET("/me", func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String()+"|"+c.GetString(ContextEmail))
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	verifier, err := utils.NewTokenVerifier(utils.VerifierConfig{Secret: testSecret, Audience: "authenticated"})
	require.NoError(t, err)
	r := newRouter(t, JWTAuthMiddleware(verifier))

	userID := uuid.New()
	valid, err := utils.CreateToken(testSecret, userID, "a@example.com", "authenticated", time.Hour)
	require.NoError(t, err)
	wrongAudience, err := utils.CreateToken(testSecret, userID, "a@example.com", "anon", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong audience", "Bearer " + wrongAudience, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String()+"|a@example.com", w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), utils.CodeUnauthorized)
			}
		})
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	r := newRouter(t, DevAuthMiddleware(userID, "dev@localhost"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String()+"|dev@localhost", w.Body.String())
}

func TestTraceIDMiddleware(t *testing.T) {
	r := newRouter(t, DevAuthMiddleware(uuid.New(), ""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	_, err := uuid.Parse(w.Header().Get(TraceIDHeader))
	assert.NoError(t, err)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(TraceIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(TraceIDHeader))
}
