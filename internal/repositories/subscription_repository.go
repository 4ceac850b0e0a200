package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"tierly/internal/models/db_models"
	"tierly/pkg/utils"
)

type SubscriptionRepository interface {
	// SyncPlanAndSubscription sets the user's plan and upserts the subscription
	// row keyed by its provider id, in one transaction.
	SyncPlanAndSubscription(ctx context.Context, sub *db_models.Subscription) error
	// CancelAndDemote moves the user to freePlanID and marks the provider
	// subscription canceled, in one transaction.
	CancelAndDemote(ctx context.Context, userID uuid.UUID, freePlanID, stripeSubscriptionID string) error
	// ChangeUserPlan updates the user's plan. With cancelOpen set, every open
	// subscription of the user is canceled in the same transaction.
	ChangeUserPlan(ctx context.Context, userID uuid.UUID, planID string, cancelOpen bool) error
	UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID string, status db_models.SubscriptionStatus) (int64, error)
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)
	FindLatestActiveByUser(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*db_models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func setUserPlan(tx *gorm.DB, userID uuid.UUID, planID string) error {
	res := tx.Model(&db_models.User{}).Where("id = ?", userID).Update("plan_id", planID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}

func (r *subscriptionRepository) SyncPlanAndSubscription(ctx context.Context, sub *db_models.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setUserPlan(tx, sub.UserID, sub.PlanID); err != nil {
			return err
		}

		// a concurrent delivery of the same event lands on the unique index and updates instead
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id",
				"plan_id",
				"status",
				"current_period_start",
				"current_period_end",
				"cancel_at_period_end",
				"trial_start",
				"trial_end",
				"updated_at",
			}),
		}).Create(sub).Error; err != nil {
			return err
		}

		var stored db_models.Subscription
		if err := tx.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).First(&stored).Error; err != nil {
			return err
		}
		sub.ID = stored.ID
		sub.CreatedAt = stored.CreatedAt
		return nil
	})
}

func (r *subscriptionRepository) CancelAndDemote(ctx context.Context, userID uuid.UUID, freePlanID, stripeSubscriptionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setUserPlan(tx, userID, freePlanID); err != nil {
			return err
		}
		return tx.Model(&db_models.Subscription{}).
			Where("stripe_subscription_id = ?", stripeSubscriptionID).
			Update("status", db_models.SubStatusCanceled).Error
	})
}

func (r *subscriptionRepository) ChangeUserPlan(ctx context.Context, userID uuid.UUID, planID string, cancelOpen bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setUserPlan(tx, userID, planID); err != nil {
			return err
		}
		if !cancelOpen {
			return nil
		}
		return tx.Model(&db_models.Subscription{}).
			Where("user_id = ? AND status IN ?", userID, db_models.OpenStatuses).
			Updates(map[string]interface{}{
				"status":               db_models.SubStatusCanceled,
				"cancel_at_period_end": true,
			}).Error
	})
}

func (r *subscriptionRepository) UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID string, status db_models.SubscriptionStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *subscriptionRepository) first(ctx context.Context, query *gorm.DB) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := query.WithContext(ctx).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	return r.first(ctx, r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC"))
}

func (r *subscriptionRepository) FindLatestActiveByUser(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	return r.first(ctx, r.db.
		Where("user_id = ? AND status IN ?", userID, db_models.OpenStatuses).
		Order("created_at DESC"))
}

func (r *subscriptionRepository) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*db_models.Subscription, error) {
	return r.first(ctx, r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID))
}
