package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/fkhayef/giftlist/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"

	// TestUserHeader sets the user ID directly (DEV ONLY)
	TestUserHeader = "X-Test-User-ID"
)

// TokenValidator validates a bearer token and returns its user ID
type TokenValidator interface {
	ValidateAccessToken(token string) (int64, error)
}

// Auth requires an authenticated user on every request. With allowTestHeader
// the X-Test-User-ID header is accepted as well, which makes it easy to test
// as different users without real auth.
func Auth(validator TokenValidator, allowTestHeader bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowTestHeader {
				if userIDStr := r.Header.Get(TestUserHeader); userIDStr != "" {
					userID, err := strconv.ParseInt(userIDStr, 10, 64)
					if err != nil || userID <= 0 {
						response.Unauthorized(w, "Invalid test user header")
						return
					}
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
					return
				}
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			if validator == nil {
				response.Unauthorized(w, "Bearer tokens are not accepted")
				return
			}
			userID, err := validator.ValidateAccessToken(parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID stores the user ID in the context
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok && userID > 0
}
