package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tierly/internal/models/db_models"
)

type UsageRepository interface {
	Insert(ctx context.Context, entry *db_models.UsageLog) error
	CountSince(ctx context.Context, userID uuid.UUID, featureID string, since int64) (int64, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]db_models.UsageLog, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Insert(ctx context.Context, entry *db_models.UsageLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CountSince counts entries with created_at >= since (unix seconds).
func (r *usageRepository) CountSince(ctx context.Context, userID uuid.UUID, featureID string, since int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db_models.UsageLog{}).
		Where("user_id = ? AND feature_id = ? AND created_at >= ?", userID, featureID, since).
		Count(&n).Error
	return n, err
}

func (r *usageRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]db_models.UsageLog, error) {
	var entries []db_models.UsageLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
