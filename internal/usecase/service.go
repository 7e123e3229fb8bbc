package usecase

import (
	"course-platform/internal/data/repository"
	"course-platform/pkg/payment"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Session SessionService
	Auth    AuthService
	User    UserService
	Order   OrderService
	Payment PaymentService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	gateway := payment.NewRobokassa(config.Payment)
	session := NewSessionService(repo.User, repo.UserToken, config, log)

	return &Service{
		Session: session,
		Auth:    NewAuthService(repo.User, session, log),
		User:    NewUserService(repo.User, log),
		Order:   NewOrderService(repo, gateway, log),
		Payment: NewPaymentService(repo.Order, gateway, log),
	}
}
