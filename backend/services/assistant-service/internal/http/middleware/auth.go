package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// SessionHeader carries the plain session id when token auth is disabled.
const SessionHeader = "X-Session-ID"

// TokenValidator verifies a signed session handle and returns the session
// id it names.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// SessionAuth resolves the caller's session id and stores it in the request
// context. With a validator configured it requires a Bearer token; without
// one it accepts the plain session header.
func SessionAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := resolveSessionID(r, validator)
			if !ok {
				http.Error(w, "missing or invalid session credentials", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSessionAuth resolves the session id when credentials are present
// and lets the request through either way.
func OptionalSessionAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessionID, ok := resolveSessionID(r, validator); ok {
				r = r.WithContext(context.WithValue(r.Context(), sessionIDKey, sessionID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveSessionID(r *http.Request, validator TokenValidator) (string, bool) {
	if validator != nil {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return "", false
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		sessionID, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return "", false
		}
		return sessionID, true
	}

	sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
	return sessionID, sessionID != ""
}

// SessionIDFromContext retrieves the session id set by SessionAuth.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(sessionIDKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
