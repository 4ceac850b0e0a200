package auth_fx

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/pkg/middleware"
	"tierly/pkg/utils"
)

var Module = fx.Provide(
	fx.Annotate(provideAuthMiddleware, fx.ResultTags(`name:"auth"`)),
)

func provideAuthMiddleware(cfg config.AuthConfig, log *zap.Logger) (gin.HandlerFunc, error) {
	if cfg.Disabled {
		devID, err := uuid.Parse(cfg.DevUserID)
		if err != nil {
			return nil, fmt.Errorf("AUTH_DISABLED needs a uuid AUTH_DEV_USER_ID: %w", err)
		}
		log.Warn("authentication disabled, every request runs as the dev user", zap.String("user_id", devID.String()))
		return middleware.DevAuthMiddleware(devID, cfg.DevUserMail), nil
	}

	verifier, err := utils.NewTokenVerifier(utils.VerifierConfig{
		Secret:   cfg.JWTSecret,
		JWKSURL:  cfg.JWKSURL,
		Audience: cfg.Audience,
	})
	if err != nil {
		return nil, err
	}
	return middleware.JWTAuthMiddleware(verifier), nil
}
