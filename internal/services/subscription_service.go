package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"tierly/internal/models/db_models"
	"tierly/internal/models/response_models"
	"tierly/internal/repositories"
	"tierly/pkg/utils"
)

type SubscriptionEventType string

const (
	EventSubscriptionCreated SubscriptionEventType = "customer.subscription.created"
	EventSubscriptionUpdated SubscriptionEventType = "customer.subscription.updated"
	EventSubscriptionDeleted SubscriptionEventType = "customer.subscription.deleted"
	EventPaymentSucceeded    SubscriptionEventType = "invoice.payment_succeeded"
	EventPaymentFailed       SubscriptionEventType = "invoice.payment_failed"
)

const (
	MetadataUserID = "user_id"
	MetadataPlanID = "plan_id"
)

// SubscriptionEvent is a provider notification reduced to what plan sync needs.
type SubscriptionEvent struct {
	Type                 SubscriptionEventType
	StripeSubscriptionID string
	Metadata             map[string]string
	Status               string
	CurrentPeriodStart   int64
	CurrentPeriodEnd     int64
	CancelAtPeriodEnd    bool
	TrialStart           *int64
	TrialEnd             *int64
}

type SubscriptionServiceInterface interface {
	// ApplySubscriptionEvent returns nil for events it cannot attribute to a
	// user or plan; only store failures are returned.
	ApplySubscriptionEvent(ctx context.Context, ev SubscriptionEvent) error
	SetUserPlan(ctx context.Context, userID uuid.UUID, planID string) error
	DowngradeToFree(ctx context.Context, userID uuid.UUID) error
	Status(ctx context.Context, userID uuid.UUID) (*response_models.SubscriptionStatusResponse, error)
}

type SubscriptionService struct {
	subRepo  repositories.SubscriptionRepository
	userRepo repositories.UserRepository
	catalog  CatalogServiceInterface
	log      *zap.Logger
}

func NewSubscriptionService(
	subRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	catalog CatalogServiceInterface,
	log *zap.Logger,
) SubscriptionServiceInterface {
	return &SubscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		catalog:  catalog,
		log:      log,
	}
}

// normalizeStatus folds provider statuses outside the stored set onto it.
func normalizeStatus(status string) db_models.SubscriptionStatus {
	s := db_models.SubscriptionStatus(status)
	if s.Valid() {
		return s
	}
	switch status {
	case "incomplete_expired":
		return db_models.SubStatusCanceled
	default:
		// incomplete, paused
		return db_models.SubStatusUnpaid
	}
}

func (s *SubscriptionService) ApplySubscriptionEvent(ctx context.Context, ev SubscriptionEvent) error {
	log := s.log.With(
		zap.String("event_type", string(ev.Type)),
		zap.String("subscription_id", ev.StripeSubscriptionID))

	switch ev.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return s.applyUpsert(ctx, log, ev)
	case EventSubscriptionDeleted:
		return s.applyDeleted(ctx, log, ev)
	case EventPaymentSucceeded:
		return s.applyStatus(ctx, log, ev.StripeSubscriptionID, db_models.SubStatusActive)
	case EventPaymentFailed:
		// access stays until the provider cancels the subscription
		return s.applyStatus(ctx, log, ev.StripeSubscriptionID, db_models.SubStatusPastDue)
	default:
		log.Debug("ignoring subscription event")
		return nil
	}
}

func metadataUserID(md map[string]string) (uuid.UUID, bool) {
	raw, ok := md[MetadataUserID]
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *SubscriptionService) applyUpsert(ctx context.Context, log *zap.Logger, ev SubscriptionEvent) error {
	userID, ok := metadataUserID(ev.Metadata)
	if !ok {
		log.Warn("subscription event without a usable user_id, skipping")
		return nil
	}
	planID := ev.Metadata[MetadataPlanID]
	if planID == "" {
		log.Warn("subscription event without plan_id, skipping", zap.String("user_id", userID.String()))
		return nil
	}

	c, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := c.Plan(planID); !ok {
		log.Warn("subscription event for unknown plan, skipping",
			zap.String("user_id", userID.String()),
			zap.String("plan_id", planID))
		return nil
	}

	sub := &db_models.Subscription{
		UserID:               userID,
		PlanID:               planID,
		StripeSubscriptionID: ev.StripeSubscriptionID,
		Status:               normalizeStatus(ev.Status),
		CurrentPeriodStart:   ev.CurrentPeriodStart,
		CurrentPeriodEnd:     ev.CurrentPeriodEnd,
		CancelAtPeriodEnd:    ev.CancelAtPeriodEnd,
		TrialStart:           ev.TrialStart,
		TrialEnd:             ev.TrialEnd,
	}

	err = s.subRepo.SyncPlanAndSubscription(ctx, sub)
	if errors.Is(err, utils.ErrRecordNotFound) {
		log.Warn("subscription event for unknown user, skipping", zap.String("user_id", userID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("subscription synced",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", planID),
		zap.String("status", string(sub.Status)))
	return nil
}

func (s *SubscriptionService) applyDeleted(ctx context.Context, log *zap.Logger, ev SubscriptionEvent) error {
	userID, ok := metadataUserID(ev.Metadata)
	if !ok {
		log.Warn("subscription deletion without a usable user_id, skipping")
		return nil
	}

	err := s.subRepo.CancelAndDemote(ctx, userID, s.catalog.FreePlanID(), ev.StripeSubscriptionID)
	if errors.Is(err, utils.ErrRecordNotFound) {
		log.Warn("subscription deletion for unknown user, skipping", zap.String("user_id", userID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("subscription canceled, user moved to free plan", zap.String("user_id", userID.String()))
	return nil
}

func (s *SubscriptionService) applyStatus(ctx context.Context, log *zap.Logger, stripeSubscriptionID string, status db_models.SubscriptionStatus) error {
	if stripeSubscriptionID == "" {
		log.Debug("invoice without subscription, skipping")
		return nil
	}

	n, err := s.subRepo.UpdateStatusByStripeID(ctx, stripeSubscriptionID, status)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn("invoice for unknown subscription")
	}
	return nil
}

func (s *SubscriptionService) SetUserPlan(ctx context.Context, userID uuid.UUID, planID string) error {
	c, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.log.Error("loading catalog failed", zap.Error(err))
		return utils.ErrDatabaseError
	}
	plan, ok := c.Plan(planID)
	if !ok || !plan.IsActive {
		return fmt.Errorf("%w: unknown plan %q", utils.ErrValidation, planID)
	}

	toFree := planID == s.catalog.FreePlanID()
	err = s.subRepo.ChangeUserPlan(ctx, userID, planID, toFree)
	if errors.Is(err, utils.ErrRecordNotFound) {
		return err
	}
	if err != nil {
		s.log.Error("changing plan failed",
			zap.String("user_id", userID.String()),
			zap.String("plan_id", planID),
			zap.Error(err))
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *SubscriptionService) DowngradeToFree(ctx context.Context, userID uuid.UUID) error {
	return s.SetUserPlan(ctx, userID, s.catalog.FreePlanID())
}

func (s *SubscriptionService) Status(ctx context.Context, userID uuid.UUID) (*response_models.SubscriptionStatusResponse, error) {
	user, err := s.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrRecordNotFound
	}

	c, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	planID := effectivePlanID(c, user.PlanID, s.catalog.FreePlanID())

	resp := &response_models.SubscriptionStatusResponse{
		UserID:   user.ID,
		PlanID:   planID,
		Features: make(map[string]response_models.FeatureAccess),
	}
	if plan, ok := c.Plan(planID); ok {
		resp.PlanName = plan.DisplayName
	}
	for _, f := range c.ActiveFeatures() {
		ent := s.catalog.ResolveEntitlement(ctx, planID, f.ID)
		resp.Features[f.ID] = response_models.FeatureAccess{Enabled: ent.Enabled, LimitValue: ent.Limit}
	}

	if planID == s.catalog.FreePlanID() {
		resp.Status = "free"
		return resp, nil
	}

	sub, err := s.subRepo.FindLatestActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if sub == nil {
		resp.Status = string(db_models.SubStatusCanceled)
		return resp, nil
	}

	resp.Status = string(sub.Status)
	subID := sub.StripeSubscriptionID
	resp.SubscriptionID = &subID
	resp.CurrentPeriodEnd = utils.UnixPtr(sub.CurrentPeriodEnd)
	resp.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	resp.TrialEnd = sub.TrialEnd
	return resp, nil
}
