package response_models

import (
	"github.com/google/uuid"
)

type FeatureAccess struct {
	Enabled    bool `json:"enabled"`
	LimitValue *int `json:"limit_value"`
}

type SubscriptionStatusResponse struct {
	UserID            uuid.UUID                `json:"user_id"`
	PlanID            string                   `json:"plan_id"`
	PlanName          string                   `json:"plan_name"`
	Status            string                   `json:"status"` // "free" or a subscription status
	SubscriptionID    *string                  `json:"subscription_id"`
	CurrentPeriodEnd  *int64                   `json:"current_period_end"`
	CancelAtPeriodEnd bool                     `json:"cancel_at_period_end"`
	TrialEnd          *int64                   `json:"trial_end"`
	Features          map[string]FeatureAccess `json:"features"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type PortalResponse struct {
	PortalURL string `json:"portal_url"`
}
