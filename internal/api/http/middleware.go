package http

import (
	"context"
	"net/http"
	"strings"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/security"
)

type contextKey string

const (
	ctxKeyUserID contextKey = "user_id"
	ctxKeyRole   contextKey = "role"
)

// actorID returns the authenticated user's ID from the request context.
func actorID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKeyUserID).(int64)
	return id
}

func actorRole(r *http.Request) domain.Role {
	role, _ := r.Context().Value(ctxKeyRole).(domain.Role)
	return role
}

// AuthMiddleware validates the bearer token and puts the caller's identity
// into the request context. Every operation downstream names its actor
// explicitly from these values.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondStatus(w, http.StatusUnauthorized, "authorization header is required")
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				respondStatus(w, http.StatusUnauthorized, "authorization header must use the Bearer scheme")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				respondStatus(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if claims.Type != security.TokenTypeAccess {
				respondStatus(w, http.StatusUnauthorized, "refresh tokens cannot access the API")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ctxKeyRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware logs each request with its method and path.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
