package db_models

// User mirrors an auth-provider account. The id comes from the provider and is never minted here.
type User struct {
	BaseModel
	Name             string  `gorm:"type:varchar(100);not null"`
	Email            string  `gorm:"type:varchar(255);index"`
	PlanID           string  `gorm:"type:varchar(50);not null;default:'free';index"`
	StripeCustomerID *string `gorm:"type:varchar(100);index"`

	Plan Plan `gorm:"foreignKey:PlanID"`
}
