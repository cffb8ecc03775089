package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"vulcanhr/internal/requestctx"
	"vulcanhr/internal/transport/http/api"
)

// Recoverer converts handler panics into a 500 response instead of
// tearing down the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestctx.ID(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
