package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UsageLog is append-only: one row per metered action. It spells out the
// BaseModel columns so created_at can close the (user, feature, time) index
// the monthly count scans.
type UsageLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"type:uuid;index:idx_usage_user_feature_created,priority:1;not null"`
	FeatureID  string          `gorm:"type:varchar(50);index:idx_usage_user_feature_created,priority:2;not null"`
	Provider   string          `gorm:"type:varchar(20);not null"`
	Model      string          `gorm:"type:varchar(50)"`
	TokensUsed int             `gorm:"not null;default:0"`
	Cost       decimal.Decimal `gorm:"type:numeric(10,6);not null;default:0"`
	CreatedAt  int64           `gorm:"autoCreateTime;index:idx_usage_user_feature_created,priority:3;index"`
	UpdatedAt  int64           `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

func (u *UsageLog) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
