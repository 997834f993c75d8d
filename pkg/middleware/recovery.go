package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// panicBody is a fixed payload; building it at request time could itself fail
// inside a recovering handler.
var panicBody = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`)

// Recovery turns handler panics into 500 responses so one bad request cannot
// take the storefront down. The panic value and stack are logged with the
// request's method and path.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write(panicBody)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
