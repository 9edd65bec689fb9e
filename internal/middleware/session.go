// Package middleware provides the HTTP middleware for the portal: session
// authentication, admin authorization, the page guard and rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
)

type contextKey string

const (
	userIDContextKey    contextKey = "user_id"
	sessionIDContextKey contextKey = "session_id"
)

// SessionValidator resolves a session cookie value to a session and user.
// Implemented by services.AuthService.
type SessionValidator interface {
	GetSession(ctx context.Context, sessionID string) (types.Session, types.User, error)
}

// AdminChecker reports whether a user currently holds the admin role.
// Implemented by services.AuthService; must fail closed.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) bool
}

// NewSessionMiddleware reads the session cookie, validates the session and
// injects the authenticated user ID into the request context. Requests
// without a valid session get 401.
func NewSessionMiddleware(validator SessionValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			session, user, err := validator.GetSession(r.Context(), cookie.Value)
			if err != nil {
				status := http.StatusUnauthorized
				message := "Not authenticated"
				if !errors.Is(err, services.ErrNotAuthenticated) {
					status = http.StatusInternalServerError
					message = "Failed to validate session"
				}
				writeJSONError(w, status, message)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, user.ID)
			ctx = context.WithValue(ctx, sessionIDContextKey, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRequireAdmin re-reads the profile role for the authenticated user and
// rejects non-admins with 403. Runs after the session middleware.
func NewRequireAdmin(checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !checker.IsAdmin(r.Context(), userID) {
				writeJSONError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the authenticated user ID set by the session
// middleware.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", errors.New("user ID not found in context")
	}
	return userID, nil
}

// SessionIDFromContext returns the session ID set by the session middleware.
func SessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok || sessionID == "" {
		return "", errors.New("session ID not found in context")
	}
	return sessionID, nil
}

// ContextWithUser injects user and session IDs, for tests and internal
// request construction.
func ContextWithUser(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
