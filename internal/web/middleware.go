package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/storefront/internal/auth"
)

// RequireSession redirects to the admin login page unless an admin is
// logged in. Token validity is left to the API; a rejected token ends the
// session in handleUnauthorized.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Session.IsAuthenticated() {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func expireSession(ctx context.Context, session *auth.Session, reason string) {
	admin := session.Admin()
	if err := session.Logout(ctx); err != nil {
		slog.Error("failed to clear admin session", "error", err)
		return
	}
	slog.Info("admin session ended", "admin", admin.Email, "reason", reason)
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
		slog.Debug("request", "method", r.Method, "path", r.URL.RequestURI(), "status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
