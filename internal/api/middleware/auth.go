package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/taskmaster/taskmaster/internal/api/respond"
	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller, attached to the request context at
// the validation boundary and read explicitly by handlers.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  domain.Role
}

// Auth validates the bearer token on every request that passes through it.
// Every verification failure, from a malformed header to a revoked session,
// collapses into a single unauthorized rejection.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			claims, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				respond.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			identity := Identity{
				ID:    claims.ID,
				Email: claims.Email,
				Role:  claims.Role,
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the authenticated caller attached by Auth.
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
