package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tierly/internal/models/db_models"
	"tierly/pkg/utils"
)

func TestUserRepository_InsertAndFind(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, repo.InsertTx(ctx, &db_models.User{
		BaseModel: db_models.BaseModel{ID: id},
		Name:      "Ada",
		Email:     "ada@example.com",
		PlanID:    "free",
	}))

	got, err := repo.FindById(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "free", got.PlanID)
	assert.Nil(t, got.StripeCustomerID)

	err = repo.InsertTx(ctx, &db_models.User{BaseModel: db_models.BaseModel{ID: id}, Name: "Dup", PlanID: "free"})
	assert.ErrorIs(t, err, utils.ErrUserAlreadyExists)

	missing, err := repo.FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_SetStripeCustomerID(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()
	id := seedUser(t, db, "free")

	require.NoError(t, repo.SetStripeCustomerID(ctx, id, "cus_123"))
	got, err := repo.FindById(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.StripeCustomerID)
	assert.Equal(t, "cus_123", *got.StripeCustomerID)

	assert.ErrorIs(t, repo.SetStripeCustomerID(ctx, uuid.New(), "cus_x"), utils.ErrRecordNotFound)
}
