package usecase

import (
	"context"
	"testing"

	"course-platform/internal/data/entity"
	"course-platform/internal/dto/request"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

func TestUserService_ChangePassword_Success(t *testing.T) {
	ctx := context.Background()

	hash, err := utils.HashPassword("old-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	var updated *entity.User
	users := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{
				Base:         entity.Base{ID: id},
				PasswordHash: hash,
				Active:       true,
			}, nil
		},
		updateFn: func(ctx context.Context, user *entity.User) error {
			updated = user
			return nil
		},
	}

	svc := NewUserService(users, zap.NewNop())

	err = svc.ChangePassword(ctx, 7, &request.ChangePasswordRequest{
		CurrentPassword: "old-secret",
		NewPassword:     "new-secret",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated == nil {
		t.Fatal("expected the account to be updated")
	}
	if !utils.CheckPasswordHash("new-secret", updated.PasswordHash) {
		t.Error("stored hash does not verify the new password")
	}
	if utils.CheckPasswordHash("old-secret", updated.PasswordHash) {
		t.Error("old password must no longer verify")
	}
}

func TestUserService_ChangePassword_WrongCurrentPassword(t *testing.T) {
	ctx := context.Background()

	hash, err := utils.HashPassword("old-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	users := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{
				Base:         entity.Base{ID: id},
				PasswordHash: hash,
				Active:       true,
			}, nil
		},
		updateFn: func(ctx context.Context, user *entity.User) error {
			t.Error("no update may happen without the current password")
			return nil
		},
	}

	svc := NewUserService(users, zap.NewNop())

	err = svc.ChangePassword(ctx, 7, &request.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new-secret",
	})
	if err == nil {
		t.Fatal("expected invalid credentials")
	}
}

func TestUserService_ChangePassword_UnknownUser(t *testing.T) {
	ctx := context.Background()

	svc := NewUserService(&mockUserRepo{}, zap.NewNop())

	err := svc.ChangePassword(ctx, 99, &request.ChangePasswordRequest{
		CurrentPassword: "old-secret",
		NewPassword:     "new-secret",
	})
	if err == nil {
		t.Fatal("expected an error for an unknown account")
	}
}
