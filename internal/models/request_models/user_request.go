package request_models

import "github.com/google/uuid"

// CreateUserRequest is sent by the client right after a successful auth-provider signup.
type CreateUserRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Email  string    `json:"email" binding:"required,email"`
	Name   string    `json:"name" binding:"required,min=1,max=100"`
	PlanID string    `json:"plan_id" binding:"omitempty,max=50"` // only the free plan is accepted
}

type UpdatePlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}
