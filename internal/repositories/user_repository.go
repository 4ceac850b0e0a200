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

type UserRepository interface {
	InsertTx(ctx context.Context, user *db_models.User) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.User, error)
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

// InsertTx creates the user row in one transaction, failing with
// utils.ErrUserAlreadyExists when the id is taken.
func (u *userRepository) InsertTx(ctx context.Context, user *db_models.User) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db_models.User{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.ErrUserAlreadyExists
		}
		return tx.Omit(clause.Associations).Create(user).Error
	})
}

func (u *userRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.User, error) {
	var user db_models.User
	err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (u *userRepository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	res := u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}
