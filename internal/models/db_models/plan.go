package db_models

import (
	"github.com/shopspring/decimal"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

type Plan struct {
	ID                   string `gorm:"type:varchar(50);primaryKey"` // e.g., "free", "gold", "platinum"
	Name                 string `gorm:"type:varchar(100);not null"`
	DisplayName          string `gorm:"type:varchar(100);not null"`
	Description          *string
	PriceMonthly         decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	PriceYearly          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	StripePriceIDMonthly *string         `gorm:"type:varchar(100)"`
	StripePriceIDYearly  *string         `gorm:"type:varchar(100)"`
	IsActive             bool            `gorm:"not null"`
	Timestamps

	Features []PlanFeature `gorm:"foreignKey:PlanID"`
}

// StripePriceID returns the provider price for the cycle, nil when the plan is not sold that way.
func (p Plan) StripePriceID(cycle BillingCycle) *string {
	if cycle == CycleYearly {
		return p.StripePriceIDYearly
	}
	return p.StripePriceIDMonthly
}

type Feature struct {
	ID          string `gorm:"type:varchar(50);primaryKey"` // e.g., "ai_requests"
	Name        string `gorm:"type:varchar(100);not null"`
	DisplayName string `gorm:"type:varchar(100);not null"`
	Description *string
	IsActive    bool `gorm:"not null"`
	Timestamps
}

// PlanFeature grants a feature to a plan. LimitValue nil means unlimited.
type PlanFeature struct {
	PlanID     string `gorm:"type:varchar(50);primaryKey"`
	FeatureID  string `gorm:"type:varchar(50);primaryKey"`
	Enabled    bool   `gorm:"not null;default:false"`
	LimitValue *int
	Timestamps

	Feature Feature `gorm:"foreignKey:FeatureID"`
}
