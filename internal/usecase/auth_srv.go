package usecase

import (
	"context"
	"fmt"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/internal/data/repository"
	"course-platform/internal/dto/request"
	"course-platform/internal/dto/response"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, ip string) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, ip string) (*response.AuthResponse, error)
	Logout(ctx context.Context, userID int64, token string) error
}

type authService struct {
	users    repository.UserRepository
	sessions SessionService
	log      *zap.Logger
}

func NewAuthService(users repository.UserRepository, sessions SessionService, log *zap.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, ip string) (*response.AuthResponse, error) {
	// 1. Check email is free
	existingUser, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to check email")
	}
	if existingUser != nil {
		return nil, fmt.Errorf("email already registered")
	}

	// 2. Check username is free
	existingUser, err = s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("failed to check username")
	}
	if existingUser != nil {
		return nil, fmt.Errorf("username already taken")
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password")
	}

	// 4. Create user
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Active:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to create account")
	}

	// 5. Auto login after register
	token, err := s.sessions.Issue(ctx, user.ID, ip)
	if err != nil {
		s.log.Warn("Failed to issue token after register",
			zap.Error(err), zap.Int64("user_id", user.ID))
		// Continue without a token, the user can still log in
	}

	s.log.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))

	resp := response.AuthToResponse(user, token)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, ip string) (*response.AuthResponse, error) {
	// 1. Find user by email, then by username
	user, err := s.users.FindByEmail(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err), zap.String("identifier", req.Username))
		return nil, fmt.Errorf("failed to find user")
	}

	if user == nil {
		user, err = s.users.FindByUsername(ctx, req.Username)
		if err != nil {
			s.log.Error("Failed to find user by username", zap.Error(err), zap.String("identifier", req.Username))
			return nil, fmt.Errorf("failed to find user")
		}
	}

	if user == nil {
		s.log.Warn("User not found for login", zap.String("identifier", req.Username))
		return nil, fmt.Errorf("invalid credentials")
	}

	// 2. Check password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("invalid credentials")
	}

	// 3. Check account is enabled
	if !user.Active {
		s.log.Warn("Inactive user tried to login", zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("account is deactivated")
	}

	// 4. Issue session token
	token, err := s.sessions.Issue(ctx, user.ID, ip)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("failed to create session")
	}

	s.log.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	resp := response.AuthToResponse(user, token)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, userID int64, token string) error {
	if err := s.sessions.Revoke(ctx, userID, token); err != nil {
		s.log.Error("Failed to revoke token", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("failed to logout")
	}

	s.log.Info("User logged out", zap.Int64("user_id", userID))
	return nil
}
