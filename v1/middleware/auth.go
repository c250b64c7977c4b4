package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	sharedutils "github.com/orgdir/identity-backend/shared/utils"
	"github.com/orgdir/identity-backend/v1/models"
	"github.com/orgdir/identity-backend/v1/services"
	authutils "github.com/orgdir/identity-backend/v1/utils"
)

// AuthMiddleware verifies bearer tokens and resolves the acting user before
// protected handlers run.
type AuthMiddleware struct {
	tokens *services.TokenService
	auth   *services.AuthService
}

// NewAuthMiddleware creates a new bearer-token authentication middleware
func NewAuthMiddleware(tokens *services.TokenService, auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		auth:   auth,
	}
}

// Authenticate returns a middleware function that validates bearer tokens
// and attaches the resolved user to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract token from Authorization header
		tokenString, err := authutils.ExtractBearerToken(r)
		if err != nil {
			slog.Warn("Failed to extract bearer token", "error", err, "path", r.URL.Path, "method", r.Method)
			sharedutils.RespondWithFailure(w, http.StatusUnauthorized, "Unauthorized", "No or invalid token provided")
			return
		}

		// Verify signature, expiry and claim shape
		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			slog.Warn("Token verification failed", "error", err, "path", r.URL.Path, "method", r.Method)
			sharedutils.RespondWithFailure(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
			return
		}

		// Re-resolve the identity so a token for a deleted user is rejected
		user, err := m.auth.FindUserByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				slog.Warn("Token subject no longer exists", "userId", claims.UserID, "path", r.URL.Path)
				sharedutils.RespondWithFailure(w, http.StatusUnauthorized, "Unauthorized", "User not found")
				return
			}
			slog.Error("Failed to resolve token subject", "error", err, "userId", claims.UserID)
			sharedutils.RespondWithFailure(w, http.StatusInternalServerError, "Internal Server Error", "Internal server error")
			return
		}

		ctx := authutils.SetAuthenticatedUser(r.Context(), &models.AuthenticatedUser{
			UserID: user.UserID,
			Email:  user.Email,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
