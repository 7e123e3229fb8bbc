package middleware

import (
	"net/http"

	"course-platform/internal/usecase"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

// AuthSession validates the request's bearer credential and binds the
// resolved principal into the request context. Every failure mode (missing,
// malformed, expired, revoked, disabled account) gets the same 401 so a
// caller cannot probe which check failed.
func AuthSession(sessions usecase.SessionService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, token, err := sessions.Validate(r.Context(), r)
			if err != nil {
				logger.Error("Failed to validate session",
					zap.Error(err),
					zap.String("path", r.URL.Path))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if user == nil {
				utils.ResponseUnauthorized(w, "Authorization required")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
