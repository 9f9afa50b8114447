package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"reelgram/internal/httputil"
	"reelgram/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the authenticated session
	SessionKey contextKey = "session"
)

// TokenVerifier validates a bearer credential and yields its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*model.Session, error)
}

// AuthMiddleware gates protected routes on a bearer credential. A missing
// token is 401; a token that is present but invalid, expired, or revoked
// is 403.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			session, err := verifier.Verify(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, model.ErrTokenExpired):
					httputil.WriteForbiddenWithCode(w, model.CodeTokenExpired, "Authentication token has expired")
				case errors.Is(err, model.ErrTokenRevoked):
					httputil.WriteForbiddenWithCode(w, model.CodeTokenRevoked, "Authentication token has been revoked")
				default:
					httputil.WriteForbiddenWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// GetSessionFromContext extracts the verified session from the request
// context. Returns nil and false outside the auth middleware.
func GetSessionFromContext(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*model.Session)
	return session, ok
}
