package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"tierly/internal/models/db_models"
	"tierly/internal/models/request_models"
	"tierly/internal/models/response_models"
	"tierly/internal/repositories"
	"tierly/pkg/utils"
)

type AccountServiceInterface interface {
	CreateUser(ctx context.Context, request request_models.CreateUserRequest) (*response_models.UserResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*response_models.UserResponse, error)
}

type AccountService struct {
	userRepo repositories.UserRepository
	catalog  CatalogServiceInterface
	log      *zap.Logger
}

func NewAccountService(userRepo repositories.UserRepository, catalog CatalogServiceInterface, log *zap.Logger) AccountServiceInterface {
	return &AccountService{
		userRepo: userRepo,
		catalog:  catalog,
		log:      log,
	}
}

func toUserResponse(u *db_models.User) *response_models.UserResponse {
	return &response_models.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		PlanID:    u.PlanID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CreateUser stores the local record for an account the auth provider already created.
// Every account starts on the free plan; paid plans arrive through the subscription webhook.
func (a *AccountService) CreateUser(ctx context.Context, request request_models.CreateUserRequest) (*response_models.UserResponse, error) {

	planID := a.catalog.FreePlanID()
	if request.PlanID != "" && request.PlanID != planID {
		return nil, fmt.Errorf("%w: new accounts start on the %s plan", utils.ErrValidation, planID)
	}

	user := &db_models.User{
		BaseModel: db_models.BaseModel{ID: request.UserID},
		Name:      request.Name,
		Email:     request.Email,
		PlanID:    planID,
	}

	if err := a.userRepo.InsertTx(ctx, user); err != nil {
		if errors.Is(err, utils.ErrUserAlreadyExists) {
			return nil, err
		}
		a.log.Error("creating user failed", zap.String("user_id", request.UserID.String()), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	a.log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("plan_id", planID))
	return toUserResponse(user), nil
}

func (a *AccountService) GetUser(ctx context.Context, userID uuid.UUID) (*response_models.UserResponse, error) {
	user, err := a.userRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrRecordNotFound
	}
	return toUserResponse(user), nil
}
