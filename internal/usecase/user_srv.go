package usecase

import (
	"context"
	"fmt"
	"time"

	"course-platform/internal/data/repository"
	"course-platform/internal/dto/request"
	"course-platform/internal/dto/response"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*response.UserResponse, error)
	ChangePassword(ctx context.Context, userID int64, req *request.ChangePasswordRequest) error
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (us *userService) GetProfile(ctx context.Context, userID int64) (*response.UserResponse, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to get profile")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) ChangePassword(ctx context.Context, userID int64, req *request.ChangePasswordRequest) error {
	// 1. Load the account
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("failed to change password")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	// 2. The caller must prove the current password
	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		us.log.Warn("Password change with wrong current password", zap.Int64("user_id", userID))
		return fmt.Errorf("invalid credentials")
	}

	// 3. Hash and store the new one
	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		us.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to process password")
	}

	user.PasswordHash = hashed
	user.UpdatedAt = time.Now()

	if err := us.userRepo.Update(ctx, user); err != nil {
		us.log.Error("Failed to update user", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("failed to change password")
	}

	us.log.Info("Password changed", zap.Int64("user_id", userID))
	return nil
}
