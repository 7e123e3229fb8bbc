package wire

import (
	"course-platform/internal/adaptor"
	"course-platform/internal/usecase"
	"course-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	service *usecase.Service,
	log *zap.Logger,
) {
	// Public routes
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)

	// Protected routes
	r.With(middleware.AuthSession(service.Session, log)).Post("/api/logout", authHandler.Logout)
}
