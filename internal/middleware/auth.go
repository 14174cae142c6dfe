package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Authenticator resolves a session token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type ctxKey int

const userIDKey ctxKey = iota

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SessionToken reads the token from the session cookie, falling back to an
// Authorization: Bearer header.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return extractBearerToken(r.Header.Get("Authorization"))
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// RequireAuth rejects requests without a valid session with 401 and puts
// the user id in the request context otherwise. unauthenticated decides
// which Authenticate errors are a plain 401 rather than a 500.
func RequireAuth(auth Authenticator, cookieName string, unauthenticated error, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.Authenticate(r.Context(), SessionToken(r, cookieName))
			if err != nil {
				status, msg := http.StatusUnauthorized, "Authentication required"
				if !errors.Is(err, unauthenticated) {
					log.WithError(err).WithField("path", r.URL.Path).Error("session lookup failed")
					status, msg = http.StatusInternalServerError, "Session lookup failed"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{"error": msg})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
