package request_models

type CheckoutRequest struct {
	PlanID       string `json:"plan_id" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=monthly yearly"`
	SuccessURL   string `json:"success_url" binding:"omitempty,url"`
	CancelURL    string `json:"cancel_url" binding:"omitempty,url"`
}

type PortalRequest struct {
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
}
