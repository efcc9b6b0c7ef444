package middleware

import (
	"context"
	"net/http"

	jwtinfra "github.com/campus-market-api/internal/infrastructure/jwt"
	"github.com/campus-market-api/internal/transport/http/cookie"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Auth returns middleware that validates the access token and injects the
// authenticated user's ID into the request context. The token is read from the
// session cookie first, then from an Authorization bearer header.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := cookie.AccessTokenFromRequest(r)
			if tokenStr == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			userID, err := provider.VerifyAccess(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID returns a context carrying the given user ID, for callers that
// sit behind something other than the HTTP middleware.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext extracts the authenticated user's ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
