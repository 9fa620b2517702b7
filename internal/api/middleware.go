package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/auth"
	"github.com/BhanuRekulampati/item-tracker/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// SessionMiddleware authenticates requests via the session cookie. The
// cookie holds a signed envelope around the session ID; the signature
// alone is not enough, the session record must still exist server-side.
func SessionMiddleware(secret string, svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			claims, err := auth.ParseSession(secret, cookie.Value)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			user, err := svc.CurrentUser(r.Context(), claims.ID)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the authenticated user from the context.
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
