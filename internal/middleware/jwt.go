package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jobtrackhq/jobtrack/internal/token"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// GetUserID returns the authenticated user id attached by JWTAuth.
// The second return is false when the request did not pass authentication.
func GetUserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// WithUserID returns a context carrying userID. Exported for handler tests.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// JWTAuth verifies the Authorization bearer token and attaches the resolved
// user id to the request context. Every failure is a 401 with a generic
// body; expired and malformed tokens are not told apart for clients beyond
// the message text.
func JWTAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			scheme, value, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || value == "" {
				unauthorized(w, "missing or malformed authorization header")
				return
			}

			userID, err := tokens.Verify(value)
			if err != nil {
				if err == token.ErrExpired {
					unauthorized(w, "token expired")
					return
				}
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
