package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"tierly/internal/models/db_models"
	"tierly/internal/models/response_models"
	"tierly/internal/repositories"
	"tierly/pkg/utils"
)

const (
	ReasonFeatureDisabled  = "feature_disabled"
	ReasonQuotaExceeded    = "quota_exceeded"
	ReasonUsageUnavailable = "usage_unavailable"
)

// MeteringPolicy returns the start of the counting window that contains now.
type MeteringPolicy func(now time.Time) time.Time

// CountByMonth counts from the first instant of the current calendar month, server-local time.
func CountByMonth(now time.Time) time.Time {
	return utils.MonthStart(now.In(time.Local))
}

// DefaultMeteringPolicies lists the metered features. Anything absent is unmetered.
func DefaultMeteringPolicies() map[string]MeteringPolicy {
	return map[string]MeteringPolicy{
		FeatureAIRequests: CountByMonth,
	}
}

type UsageMeta struct {
	FeatureID  string
	Provider   string
	Model      string
	TokensUsed int
	Cost       decimal.Decimal
}

// UsageGateResult is the gate's answer. Limit nil means unlimited.
type UsageGateResult struct {
	Allowed bool
	Current int64
	Limit   *int
	Reason  string
}

type UsageServiceInterface interface {
	CountUsageThisMonth(ctx context.Context, userID uuid.UUID, featureID string) (int64, error)
	CheckUsage(ctx context.Context, userID uuid.UUID, planID, featureID string) UsageGateResult
	// RecordUsage appends a usage entry. Failures are logged, never returned.
	RecordUsage(ctx context.Context, userID uuid.UUID, meta UsageMeta)
	UsageStats(ctx context.Context, userID uuid.UUID, planID, featureID string) (response_models.UsageStats, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]response_models.UsageHistoryEntry, error)
	IsMetered(featureID string) bool
}

type UsageService struct {
	usageRepo repositories.UsageRepository
	catalog   CatalogServiceInterface
	policies  map[string]MeteringPolicy
	now       utils.Clock
	log       *zap.Logger
}

func NewUsageService(usageRepo repositories.UsageRepository, catalog CatalogServiceInterface, log *zap.Logger) UsageServiceInterface {
	return NewUsageServiceWithClock(usageRepo, catalog, DefaultMeteringPolicies(), time.Now, log)
}

func NewUsageServiceWithClock(
	usageRepo repositories.UsageRepository,
	catalog CatalogServiceInterface,
	policies map[string]MeteringPolicy,
	now utils.Clock,
	log *zap.Logger,
) UsageServiceInterface {
	return &UsageService{
		usageRepo: usageRepo,
		catalog:   catalog,
		policies:  policies,
		now:       now,
		log:       log,
	}
}

func (s *UsageService) IsMetered(featureID string) bool {
	_, ok := s.policies[featureID]
	return ok
}

// windowStart is the start of the feature's counting window. Unmetered
// features report against the calendar month.
func (s *UsageService) windowStart(featureID string) time.Time {
	if policy, ok := s.policies[featureID]; ok {
		return policy(s.now())
	}
	return CountByMonth(s.now())
}

// CountUsageThisMonth counts the feature's usage in the same window the gate enforces.
func (s *UsageService) CountUsageThisMonth(ctx context.Context, userID uuid.UUID, featureID string) (int64, error) {
	return s.usageRepo.CountSince(ctx, userID, featureID, s.windowStart(featureID).Unix())
}

func (s *UsageService) CheckUsage(ctx context.Context, userID uuid.UUID, planID, featureID string) UsageGateResult {
	ent := s.catalog.ResolveEntitlement(ctx, planID, featureID)

	if !ent.Enabled {
		zero := 0
		return UsageGateResult{Allowed: false, Current: 0, Limit: &zero, Reason: ReasonFeatureDisabled}
	}
	if ent.Limit == nil {
		return UsageGateResult{Allowed: true}
	}

	if !s.IsMetered(featureID) {
		return UsageGateResult{Allowed: true, Limit: ent.Limit}
	}

	current, err := s.CountUsageThisMonth(ctx, userID, featureID)
	if err != nil {
		s.log.Error("counting usage failed, denying",
			zap.String("user_id", userID.String()),
			zap.String("feature_id", featureID),
			zap.Error(err))
		zero := 0
		return UsageGateResult{Allowed: false, Current: 0, Limit: &zero, Reason: ReasonUsageUnavailable}
	}

	result := UsageGateResult{
		Allowed: current < int64(*ent.Limit),
		Current: current,
		Limit:   ent.Limit,
	}
	if !result.Allowed {
		result.Reason = ReasonQuotaExceeded
	}
	return result
}

func (s *UsageService) RecordUsage(ctx context.Context, userID uuid.UUID, meta UsageMeta) {
	// the write outlives a client that hung up after getting its answer
	ctx = context.WithoutCancel(ctx)

	entry := &db_models.UsageLog{
		CreatedAt:  s.now().Unix(),
		UserID:     userID,
		FeatureID:  meta.FeatureID,
		Provider:   meta.Provider,
		Model:      meta.Model,
		TokensUsed: meta.TokensUsed,
		Cost:       meta.Cost,
	}
	if err := s.usageRepo.Insert(ctx, entry); err != nil {
		s.log.Warn("recording usage failed",
			zap.String("user_id", userID.String()),
			zap.String("feature_id", meta.FeatureID),
			zap.Error(err))
	}
}

func (s *UsageService) UsageStats(ctx context.Context, userID uuid.UUID, planID, featureID string) (response_models.UsageStats, error) {
	current, err := s.CountUsageThisMonth(ctx, userID, featureID)
	if err != nil {
		s.log.Error("counting usage failed", zap.String("user_id", userID.String()), zap.Error(err))
		return response_models.UsageStats{}, utils.ErrDatabaseError
	}

	stats := response_models.UsageStats{CurrentUsage: current}

	ent := s.catalog.ResolveEntitlement(ctx, planID, featureID)
	if !ent.Enabled {
		zero := 0
		stats.Limit = &zero
		stats.Remaining = &zero
		return stats, nil
	}
	if ent.Limit != nil {
		limit := *ent.Limit
		remaining := limit - int(current)
		if remaining < 0 {
			remaining = 0
		}
		stats.Limit = &limit
		stats.Remaining = &remaining
	}
	return stats, nil
}

func (s *UsageService) History(ctx context.Context, userID uuid.UUID, limit int) ([]response_models.UsageHistoryEntry, error) {
	entries, err := s.usageRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		s.log.Error("listing usage failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.UsageHistoryEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, response_models.UsageHistoryEntry{
			ID:         e.ID,
			Provider:   e.Provider,
			Model:      e.Model,
			TokensUsed: e.TokensUsed,
			CreatedAt:  e.CreatedAt,
		})
	}
	return result, nil
}
