package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"novara/internal/httputil"
	"novara/internal/model"
	"novara/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
)

// SessionResolver turns a bearer token into its live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.Session, error)
}

// TokenFromRequest returns the session token, checking the Authorization header
// first (API clients) and then the session cookie (browsers).
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie(session.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware rejects requests without a live session with 401.
func AuthMiddleware(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Not authenticated")
				return
			}

			sess, err := sessions.Resolve(r.Context(), tokenString)
			if err != nil {
				switch {
				case errors.Is(err, model.ErrSessionExpired):
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Session has expired")
				case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrTokenInvalid):
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid session")
				default:
					httputil.WriteInternalError(w, "Failed to verify session")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, sess.UserID)))
		})
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a live session is
// presented and lets every request through.
func OptionalAuthMiddleware(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := TokenFromRequest(r); tokenString != "" {
				if sess, err := sessions.Resolve(r.Context(), tokenString); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserIDKey, sess.UserID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
