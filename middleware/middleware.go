package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"taskflow/backend/api-service/logging"
	"taskflow/backend/api-service/models"
	"taskflow/backend/api-service/utils"
)

// UserResolver resolves a token's user id claim to the stored user.
// Satisfied by services.UserService.
type UserResolver interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

type contextKey string

const userContextKey contextKey = "user"

// JWTAuthMiddleware extracts and verifies the bearer token, resolves the
// user and stores it in the request context. Every failure mode (missing
// or malformed header, bad signature, expired token, vanished user) is
// the same 401 so callers cannot tell them apart.
func JWTAuthMiddleware(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				writeUnauthorized(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MALFORMED_HEADER, Description: Malformed Authorization header for request to %s %s", r.Method, r.URL.Path)
				writeUnauthorized(w)
				return
			}

			claims, err := utils.ValidateToken(parts[1])
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
				writeUnauthorized(w)
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_UNKNOWN_USER, Description: Token user %s could not be resolved: %v", claims.UserID, err)
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user placed by the middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": "Not authorized",
	})
}
