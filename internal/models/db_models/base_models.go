package db_models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel stamps unix seconds through gorm's autoCreateTime/autoUpdateTime,
// which leave a preset CreatedAt alone.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CreatedAt int64          `gorm:"autoCreateTime;index"`
	UpdatedAt int64          `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate mints an id unless the caller supplied one (users keep the auth provider's id).
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Timestamps is used by catalog tables keyed by a slug instead of a uuid.
type Timestamps struct {
	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}
