package response_models

import "github.com/shopspring/decimal"

type PlanFeatureResponse struct {
	FeatureID    string  `json:"feature_id"`
	DisplayName  string  `json:"display_name"`
	Description  *string `json:"description,omitempty"`
	Enabled      bool    `json:"enabled"`
	LimitValue   *int    `json:"limit_value"`
	CurrentUsage *int64  `json:"current_usage,omitempty"`
}

type PlanResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	DisplayName  string                `json:"display_name"`
	Description  *string               `json:"description,omitempty"`
	PriceMonthly decimal.Decimal       `json:"price_monthly"`
	PriceYearly  decimal.Decimal       `json:"price_yearly"`
	Features     []PlanFeatureResponse `json:"features"`
}

type SubscriptionSummary struct {
	Status            string `json:"status"`
	CurrentPeriodEnd  *int64 `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

type UserPlanInfo struct {
	PlanID       string                `json:"plan_id"`
	PlanName     string                `json:"plan_name"`
	DisplayName  string                `json:"display_name"`
	Features     []PlanFeatureResponse `json:"features"`
	Subscription *SubscriptionSummary  `json:"subscription,omitempty"`
}

type CatalogConstants struct {
	FreePlanID        string   `json:"free_plan_id"`
	AvailablePlanIDs  []string `json:"available_plan_ids"`
	AIRequestsFeature string   `json:"ai_requests_feature_id"`
	AvailableFeatures []string `json:"available_feature_ids"`
}
