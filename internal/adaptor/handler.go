package adaptor

import (
	"course-platform/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Order   *OrderHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Order:   NewOrderHandler(service.Order, log),
		Payment: NewPaymentHandler(service.Payment, log),
	}
}
