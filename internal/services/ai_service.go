package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/models/request_models"
	"tierly/internal/models/response_models"
	"tierly/internal/repositories"
	"tierly/pkg/utils"
)

const maxChatTokens = 1000

// USD per 1K tokens
var modelRates = map[string]decimal.Decimal{
	"gpt-4o-mini": decimal.RequireFromString("0.00015"),
	"gpt-4o":      decimal.RequireFromString("0.003"),

	"gemini-1.5-flash": decimal.RequireFromString("0.000075"),
	"gemini-1.5-pro":   decimal.RequireFromString("0.00125"),
}

// CalculateCost prices a completion. Unknown models are billed at the gpt-4o-mini rate.
func CalculateCost(model string, tokens int) decimal.Decimal {
	rate, ok := modelRates[model]
	if !ok {
		rate = modelRates["gpt-4o-mini"]
	}
	return rate.Mul(decimal.NewFromInt(int64(tokens))).Div(decimal.NewFromInt(1000)).Round(6)
}

type AIServiceInterface interface {
	Chat(ctx context.Context, userID uuid.UUID, req request_models.ChatRequest) (*response_models.ChatResponse, error)
	UsageStats(ctx context.Context, userID uuid.UUID) (*response_models.UsageStats, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]response_models.UsageHistoryEntry, error)
}

type AIService struct {
	userRepo  repositories.UserRepository
	usage     UsageServiceInterface
	completer utils.ChatCompleter
	cfg       config.AIConfig
	log       *zap.Logger
}

func NewAIService(
	userRepo repositories.UserRepository,
	usage UsageServiceInterface,
	completer utils.ChatCompleter,
	cfg config.AIConfig,
	log *zap.Logger,
) AIServiceInterface {
	return &AIService{
		userRepo:  userRepo,
		usage:     usage,
		completer: completer,
		cfg:       cfg,
		log:       log,
	}
}

func (a *AIService) Chat(ctx context.Context, userID uuid.UUID, req request_models.ChatRequest) (*response_models.ChatResponse, error) {

	user, err := a.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrRecordNotFound
	}

	gate := a.usage.CheckUsage(ctx, user.ID, user.PlanID, FeatureAIRequests)
	if !gate.Allowed {
		switch gate.Reason {
		case ReasonFeatureDisabled:
			return nil, utils.ErrUpgradeRequired
		case ReasonQuotaExceeded:
			return nil, &utils.UsageLimitError{
				FeatureID: FeatureAIRequests,
				Current:   gate.Current,
				Limit:     *gate.Limit,
			}
		default:
			return nil, utils.ErrDatabaseError
		}
	}

	model := req.Model
	if model == "" {
		model = a.cfg.DefaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.cfg.MaxTokens
	}
	if maxTokens > maxChatTokens {
		maxTokens = maxChatTokens
	}
	temperature := a.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	result, err := a.completer.Complete(ctx, utils.CompletionRequest{
		Model:       model,
		Messages:    []utils.ChatMessage{{Role: "user", Content: req.Message}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		if !errors.Is(err, utils.ErrExternalService) {
			err = fmt.Errorf("%w: %v", utils.ErrExternalService, err)
		}
		return nil, err
	}

	// the provider may substitute its own model
	if result.Model != "" {
		model = result.Model
	}

	cost := CalculateCost(model, result.TotalTokens)
	a.usage.RecordUsage(ctx, user.ID, UsageMeta{
		FeatureID:  FeatureAIRequests,
		Provider:   a.completer.Provider(),
		Model:      model,
		TokensUsed: result.TotalTokens,
		Cost:       cost,
	})

	return &response_models.ChatResponse{
		Message:        result.Content,
		Model:          model,
		ConversationID: req.ConversationID,
		TokensUsed:     result.TotalTokens,
		Cost:           cost,
		Usage: response_models.TokenUsage{
			PromptTokens:     result.PromptTokens,
			CompletionTokens: result.CompletionTokens,
			TotalTokens:      result.TotalTokens,
		},
	}, nil
}

func (a *AIService) UsageStats(ctx context.Context, userID uuid.UUID) (*response_models.UsageStats, error) {
	user, err := a.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrRecordNotFound
	}

	stats, err := a.usage.UsageStats(ctx, user.ID, user.PlanID, FeatureAIRequests)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (a *AIService) History(ctx context.Context, userID uuid.UUID, limit int) ([]response_models.UsageHistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return a.usage.History(ctx, userID, limit)
}
