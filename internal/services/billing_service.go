package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/models/db_models"
	"tierly/internal/models/request_models"
	"tierly/internal/models/response_models"
	"tierly/internal/repositories"
	"tierly/pkg/utils"
)

type BillingServiceInterface interface {
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req request_models.CheckoutRequest) (*response_models.CheckoutResponse, error)
	CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (*response_models.PortalResponse, error)
	CancelSubscription(ctx context.Context, userID uuid.UUID, stripeSubscriptionID string) error
	// HandleWebhook verifies and applies a provider notification. Only a bad
	// signature or a store failure is returned; the provider retries on the latter.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type BillingService struct {
	userRepo      repositories.UserRepository
	subRepo       repositories.SubscriptionRepository
	catalog       CatalogServiceInterface
	subscriptions SubscriptionServiceInterface
	gateway       utils.BillingGateway
	cfg           config.StripeConfig
	log           *zap.Logger
}

func NewBillingService(
	userRepo repositories.UserRepository,
	subRepo repositories.SubscriptionRepository,
	catalog CatalogServiceInterface,
	subscriptions SubscriptionServiceInterface,
	gateway utils.BillingGateway,
	cfg config.StripeConfig,
	log *zap.Logger,
) BillingServiceInterface {
	return &BillingService{
		userRepo:      userRepo,
		subRepo:       subRepo,
		catalog:       catalog,
		subscriptions: subscriptions,
		gateway:       gateway,
		cfg:           cfg,
		log:           log,
	}
}

func (b *BillingService) appURL(path string) string {
	return strings.TrimRight(b.cfg.AppURL, "/") + path
}

func (b *BillingService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, req request_models.CheckoutRequest) (*response_models.CheckoutResponse, error) {

	user, err := b.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrRecordNotFound
	}

	plan, err := b.catalog.PaidPlan(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, utils.ErrValidation) {
			return nil, err
		}
		b.log.Error("catalog unavailable for checkout", zap.String("plan_id", req.PlanID), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	cycle := db_models.CycleMonthly
	if req.BillingCycle != "" {
		cycle = db_models.BillingCycle(req.BillingCycle)
	}
	priceID := plan.StripePriceID(cycle)
	if priceID == nil || *priceID == "" {
		return nil, fmt.Errorf("%w: plan %q has no %s price", utils.ErrValidation, plan.ID, cycle)
	}

	customerID, err := b.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = b.appURL("/billing/success?session_id={CHECKOUT_SESSION_ID}")
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = b.appURL("/pricing")
	}

	url, sessionID, err := b.gateway.CreateCheckoutSession(ctx, utils.CheckoutSessionInput{
		CustomerID: customerID,
		PriceID:    *priceID,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		TrialDays:  b.cfg.TrialDays,
		Metadata: map[string]string{
			MetadataUserID: user.ID.String(),
			MetadataPlanID: plan.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	b.log.Info("checkout session created",
		zap.String("user_id", user.ID.String()),
		zap.String("plan_id", plan.ID),
		zap.String("session_id", sessionID))

	return &response_models.CheckoutResponse{CheckoutURL: url, SessionID: sessionID}, nil
}

// ensureCustomer returns the user's provider customer, creating and storing it on first use.
func (b *BillingService) ensureCustomer(ctx context.Context, user *db_models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := b.gateway.CreateCustomer(ctx, user.Email, user.Name, map[string]string{
		MetadataUserID: user.ID.String(),
	})
	if err != nil {
		return "", err
	}
	if err := b.userRepo.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
		b.log.Error("storing customer id failed",
			zap.String("user_id", user.ID.String()),
			zap.String("customer_id", customerID),
			zap.Error(err))
		return "", utils.ErrDatabaseError
	}
	return customerID, nil
}

func (b *BillingService) CreatePortalSession(ctx context.Context, userID uuid.UUID, returnURL string) (*response_models.PortalResponse, error) {
	user, err := b.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrRecordNotFound
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return nil, utils.ErrStripeCustomerMissing
	}

	if returnURL == "" {
		returnURL = b.appURL("/account")
	}
	url, err := b.gateway.CreatePortalSession(ctx, *user.StripeCustomerID, returnURL)
	if err != nil {
		return nil, err
	}
	return &response_models.PortalResponse{PortalURL: url}, nil
}

func (b *BillingService) CancelSubscription(ctx context.Context, userID uuid.UUID, stripeSubscriptionID string) error {
	local, err := b.subRepo.FindByStripeID(ctx, stripeSubscriptionID)
	if err != nil {
		return utils.ErrDatabaseError
	}

	if local != nil {
		if local.UserID != userID {
			return utils.ErrRecordNotFound
		}
	} else {
		// the created webhook may not have landed yet
		remote, err := b.gateway.GetSubscription(ctx, stripeSubscriptionID)
		if err != nil {
			return err
		}
		if remote.Metadata[MetadataUserID] != userID.String() {
			return utils.ErrRecordNotFound
		}
	}

	if err := b.gateway.CancelAtPeriodEnd(ctx, stripeSubscriptionID); err != nil {
		return err
	}
	b.log.Info("subscription set to cancel at period end",
		zap.String("user_id", userID.String()),
		zap.String("subscription_id", stripeSubscriptionID))
	return nil
}

func (b *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := b.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: webhook signature: %v", utils.ErrValidation, err)
	}

	log := b.log.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	if event.Data == nil {
		log.Warn("webhook event without data")
		return nil
	}

	ev, ok, err := toSubscriptionEvent(SubscriptionEventType(event.Type), event.Data.Raw)
	if err != nil {
		log.Warn("webhook payload could not be decoded", zap.Error(err))
		return nil
	}
	if !ok {
		log.Debug("webhook event ignored")
		return nil
	}

	if err := b.subscriptions.ApplySubscriptionEvent(ctx, ev); err != nil {
		log.Error("applying webhook event failed", zap.Error(err))
		return err
	}
	return nil
}

// toSubscriptionEvent reports ok=false for event types plan sync does not handle.
func toSubscriptionEvent(eventType SubscriptionEventType, raw json.RawMessage) (SubscriptionEvent, bool, error) {
	switch eventType {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return SubscriptionEvent{}, false, err
		}
		return SubscriptionEvent{
			Type:                 eventType,
			StripeSubscriptionID: sub.ID,
			Metadata:             sub.Metadata,
			Status:               string(sub.Status),
			CurrentPeriodStart:   sub.CurrentPeriodStart,
			CurrentPeriodEnd:     sub.CurrentPeriodEnd,
			CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
			TrialStart:           utils.UnixPtr(sub.TrialStart),
			TrialEnd:             utils.UnixPtr(sub.TrialEnd),
		}, true, nil

	case EventPaymentSucceeded, EventPaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			return SubscriptionEvent{}, false, err
		}
		ev := SubscriptionEvent{Type: eventType, Metadata: inv.Metadata}
		if inv.Subscription != nil {
			ev.StripeSubscriptionID = inv.Subscription.ID
		}
		return ev, true, nil
	}

	return SubscriptionEvent{}, false, nil
}
