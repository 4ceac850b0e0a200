package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"tierly/internal/models/db_models"
	"tierly/internal/models/response_models"
	"tierly/internal/repositories"
	"tierly/pkg/utils"
)

// Served by GET /constants when the catalog cannot be read.
var fallbackConstants = response_models.CatalogConstants{
	FreePlanID:        "free",
	AvailablePlanIDs:  []string{"free", "gold", "platinum"},
	AIRequestsFeature: FeatureAIRequests,
	AvailableFeatures: []string{FeatureAIRequests},
}

type PlanServiceInterface interface {
	ListAvailablePlans(ctx context.Context) ([]response_models.PlanResponse, error)
	// GetUserPlanInfo returns nil, nil when the user does not exist.
	GetUserPlanInfo(ctx context.Context, userID uuid.UUID) (*response_models.UserPlanInfo, error)
	CatalogConstants(ctx context.Context) response_models.CatalogConstants
}

func NewPlanService(
	planRepo repositories.IPlanRepository,
	userRepo repositories.UserRepository,
	subRepo repositories.SubscriptionRepository,
	catalog CatalogServiceInterface,
	usage UsageServiceInterface,
	log *zap.Logger,
) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
		userRepo: userRepo,
		subRepo:  subRepo,
		catalog:  catalog,
		usage:    usage,
		log:      log,
	}
}

type PlanService struct {
	planRepo repositories.IPlanRepository
	userRepo repositories.UserRepository
	subRepo  repositories.SubscriptionRepository
	catalog  CatalogServiceInterface
	usage    UsageServiceInterface
	log      *zap.Logger
}

func (p *PlanService) ListAvailablePlans(ctx context.Context) ([]response_models.PlanResponse, error) {

	plans, err := p.planRepo.GetActivePlansWithFeatures(ctx)
	if err != nil {
		p.log.Error("listing plans failed", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].PriceMonthly.LessThan(plans[j].PriceMonthly)
	})

	result := make([]response_models.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		result = append(result, toPlanResponse(plan))
	}

	return result, nil
}

func toPlanResponse(plan db_models.Plan) response_models.PlanResponse {
	features := make([]response_models.PlanFeatureResponse, 0, len(plan.Features))
	for _, pf := range plan.Features {
		if !pf.Feature.IsActive {
			continue
		}
		features = append(features, response_models.PlanFeatureResponse{
			FeatureID:   pf.FeatureID,
			DisplayName: pf.Feature.DisplayName,
			Description: pf.Feature.Description,
			Enabled:     pf.Enabled,
			LimitValue:  pf.LimitValue,
		})
	}

	return response_models.PlanResponse{
		ID:           plan.ID,
		Name:         plan.Name,
		DisplayName:  plan.DisplayName,
		Description:  plan.Description,
		PriceMonthly: plan.PriceMonthly,
		PriceYearly:  plan.PriceYearly,
		Features:     features,
	}
}

func (p *PlanService) GetUserPlanInfo(ctx context.Context, userID uuid.UUID) (*response_models.UserPlanInfo, error) {

	user, err := p.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, nil
	}

	c, err := p.catalog.Snapshot(ctx)
	if err != nil {
		p.log.Error("loading catalog failed", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	// a plan link the catalog does not know is reported as the free plan
	planID := effectivePlanID(c, user.PlanID, p.catalog.FreePlanID())

	info := &response_models.UserPlanInfo{PlanID: planID}
	if plan, ok := c.Plan(planID); ok {
		info.PlanName = plan.Name
		info.DisplayName = plan.DisplayName
	}

	for _, f := range c.ActiveFeatures() {
		ent := p.catalog.ResolveEntitlement(ctx, planID, f.ID)
		fr := response_models.PlanFeatureResponse{
			FeatureID:   f.ID,
			DisplayName: f.DisplayName,
			Description: f.Description,
			Enabled:     ent.Enabled,
			LimitValue:  ent.Limit,
		}
		if ent.Enabled && p.usage.IsMetered(f.ID) {
			current, err := p.usage.CountUsageThisMonth(ctx, user.ID, f.ID)
			if err != nil {
				p.log.Warn("counting usage failed",
					zap.String("user_id", user.ID.String()),
					zap.String("feature_id", f.ID),
					zap.Error(err))
			} else {
				fr.CurrentUsage = &current
			}
		}
		info.Features = append(info.Features, fr)
	}

	sub, err := p.subRepo.FindLatestByUser(ctx, user.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if sub != nil {
		info.Subscription = &response_models.SubscriptionSummary{
			Status:            string(sub.Status),
			CurrentPeriodEnd:  utils.UnixPtr(sub.CurrentPeriodEnd),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		}
	}

	return info, nil
}

func (p *PlanService) CatalogConstants(ctx context.Context) response_models.CatalogConstants {
	c, err := p.catalog.Snapshot(ctx)
	if err != nil {
		p.log.Warn("catalog unavailable, serving fallback constants", zap.Error(err))
		return fallbackConstants
	}

	plans := make([]db_models.Plan, 0, len(c.Plans))
	for _, plan := range c.Plans {
		if plan.IsActive {
			plans = append(plans, plan)
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].PriceMonthly.LessThan(plans[j].PriceMonthly)
	})

	result := response_models.CatalogConstants{
		FreePlanID:        p.catalog.FreePlanID(),
		AIRequestsFeature: FeatureAIRequests,
		AvailablePlanIDs:  make([]string, 0, len(plans)),
	}
	for _, plan := range plans {
		result.AvailablePlanIDs = append(result.AvailablePlanIDs, plan.ID)
	}
	for _, f := range c.ActiveFeatures() {
		result.AvailableFeatures = append(result.AvailableFeatures, f.ID)
	}
	return result
}
