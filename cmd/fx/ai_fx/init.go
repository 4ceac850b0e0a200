package ai_fx

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/services"
	"tierly/pkg/utils"
)

var Module = fx.Provide(
	provideChatCompleter,
	services.NewAIService,
)

// provideChatCompleter picks the LLM provider from AI_PROVIDER.
func provideChatCompleter(lc fx.Lifecycle, cfg config.AIConfig, log *zap.Logger) (utils.ChatCompleter, error) {
	log.Info("initializing chat provider", zap.String("provider", cfg.Provider), zap.String("default_model", cfg.DefaultModel))

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when using the openai provider")
		}
		return utils.NewOpenAIChatClient(cfg.OpenAIKey), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when using the gemini provider")
		}
		client, err := utils.NewGeminiChatClient(context.Background(), cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s. Use 'openai' or 'gemini'", cfg.Provider)
	}
}
