package wire

import (
	"course-platform/internal/adaptor"
	"course-platform/internal/usecase"
	"course-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	service *usecase.Service,
	log *zap.Logger,
) {
	protected := r.With(middleware.AuthSession(service.Session, log))
	protected.Get("/api/profile", userHandler.GetProfile)
	protected.Put("/api/profile/password", userHandler.ChangePassword)
}
