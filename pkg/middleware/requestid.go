package middleware

import (
	"net/http"

	"course-platform/pkg/utils"

	"github.com/google/uuid"
)

// RequestID tags every request with a correlation id, honoring one supplied
// by the client or proxy
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", id)
			ctx := utils.SetRequestIDContext(r.Context(), id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
