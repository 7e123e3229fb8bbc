package wire

import (
	"net/http"

	"course-platform/internal/adaptor"
	"course-platform/internal/data/repository"
	"course-platform/internal/usecase"
	"course-platform/pkg/middleware"
	"course-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the assembled dependencies
type App struct {
	Router *chi.Mux
}

// Wiring initializes services, handlers and the router
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, service, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Feature routes
	wireAuth(r, handler.Auth, service, logger)
	wireUser(r, handler.User, service, logger)
	wireOrder(r, handler.Order, service, logger)
	wirePayment(r, handler.Payment)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
