package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/models/db_models"
	"tierly/internal/repositories"
	mem "tierly/pkg/memcache"
	"tierly/pkg/utils"
)

const (
	catalogCacheKey = "catalog"

	FeatureAIRequests = "ai_requests"
)

// EntitlementResult is what a plan grants for one feature. Limit nil means unlimited.
type EntitlementResult struct {
	Enabled bool
	Limit   *int
}

type CatalogServiceInterface interface {
	// ResolveEntitlement never fails. An unknown plan resolves as the free plan;
	// a missing row, an inactive feature or an unreadable catalog all resolve to
	// disabled with limit 0.
	ResolveEntitlement(ctx context.Context, planID, featureID string) EntitlementResult
	Snapshot(ctx context.Context) (*repositories.Catalog, error)
	FreePlanID() string
	// PaidPlan returns planID when it is an active plan other than the free one,
	// ErrValidation when it is not, and the load error when the catalog is unreadable.
	PaidPlan(ctx context.Context, planID string) (*db_models.Plan, error)
}

type CatalogService struct {
	planRepo   repositories.IPlanRepository
	cache      mem.Cache[*repositories.Catalog]
	ttl        time.Duration
	freePlanID string
	log        *zap.Logger
}

func NewCatalogService(
	planRepo repositories.IPlanRepository,
	cache mem.Cache[*repositories.Catalog],
	cfg config.CatalogConfig,
	log *zap.Logger,
) CatalogServiceInterface {
	return &CatalogService{
		planRepo:   planRepo,
		cache:      cache,
		ttl:        cfg.CacheTTL,
		freePlanID: cfg.FreePlanID,
		log:        log,
	}
}

func (s *CatalogService) FreePlanID() string {
	return s.freePlanID
}

func (s *CatalogService) Snapshot(ctx context.Context) (*repositories.Catalog, error) {
	if c, ok := s.cache.Get(catalogCacheKey); ok && c != nil {
		return c, nil
	}

	c, err := s.planRepo.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Put(catalogCacheKey, c, s.ttl)
	return c, nil
}

// effectivePlanID maps a plan id the catalog does not know to the free plan.
func effectivePlanID(c *repositories.Catalog, planID, freePlanID string) string {
	if _, ok := c.Plan(planID); ok {
		return planID
	}
	return freePlanID
}

func denied() EntitlementResult {
	zero := 0
	return EntitlementResult{Enabled: false, Limit: &zero}
}

func (s *CatalogService) ResolveEntitlement(ctx context.Context, planID, featureID string) EntitlementResult {
	c, err := s.Snapshot(ctx)
	if err != nil {
		s.log.Warn("catalog unavailable, denying entitlement",
			zap.String("plan_id", planID),
			zap.String("feature_id", featureID),
			zap.Error(err))
		return denied()
	}

	planID = effectivePlanID(c, planID, s.freePlanID)

	pf, ok := c.PlanFeature(planID, featureID)
	if !ok {
		return denied()
	}
	if f, ok := c.Feature(featureID); !ok || !f.IsActive {
		return denied()
	}

	result := EntitlementResult{Enabled: pf.Enabled}
	if pf.LimitValue != nil {
		limit := *pf.LimitValue
		result.Limit = &limit
	}
	return result
}

func (s *CatalogService) PaidPlan(ctx context.Context, planID string) (*db_models.Plan, error) {
	c, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := c.Plan(planID)
	if !ok || !p.IsActive || p.ID == s.freePlanID {
		return nil, fmt.Errorf("%w: plan %q cannot be purchased", utils.ErrValidation, planID)
	}
	return p, nil
}
