package db_models

import (
	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubStatusTrialing SubscriptionStatus = "trialing"
	SubStatusActive   SubscriptionStatus = "active"
	SubStatusPastDue  SubscriptionStatus = "past_due"
	SubStatusCanceled SubscriptionStatus = "canceled"
	SubStatusUnpaid   SubscriptionStatus = "unpaid"
)

// OpenStatuses are the statuses a self-service downgrade cancels.
var OpenStatuses = []SubscriptionStatus{SubStatusActive, SubStatusTrialing, SubStatusPastDue}

// Valid reports whether s is one of the statuses this system stores.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubStatusTrialing, SubStatusActive, SubStatusPastDue, SubStatusCanceled, SubStatusUnpaid:
		return true
	}
	return false
}

type Subscription struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`
	PlanID string    `gorm:"type:varchar(50);index;not null"`

	StripeSubscriptionID string             `gorm:"type:varchar(100);uniqueIndex"`
	Status               SubscriptionStatus `gorm:"type:varchar(20);index;not null"`

	// unix seconds
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	CancelAtPeriodEnd  bool `gorm:"not null;default:false"`
	TrialStart         *int64
	TrialEnd           *int64
}
