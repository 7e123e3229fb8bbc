package wire

import (
	"course-platform/internal/adaptor"
	"course-platform/internal/usecase"
	"course-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOrder(
	r chi.Router,
	orderHandler *adaptor.OrderHandler,
	service *usecase.Service,
	log *zap.Logger,
) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.AuthSession(service.Session, log))
		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.List)
	})
}
