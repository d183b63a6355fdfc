package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"linkup_server/services"
)

// TokenVerifier authenticates a bearer token into claims.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

type contextKey string

const (
	userIDKey contextKey = "userId"
	emailKey  contextKey = "email"
)

// Auth rejects requests without a valid bearer token and stamps the
// caller's identity onto the request context.
func Auth(tokens TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id, or "" outside the middleware.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// Email returns the authenticated email, or "" outside the middleware.
func Email(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}
