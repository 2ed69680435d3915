package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	apiContext "taskhub/internal/api/context"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/repositories"
)

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	users    *repositories.UserRepository
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, users *repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, users: users}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(parts[1])
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		user, err := m.users.GetByID(claims.UserID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load user", nil)
			return
		}
		if user == nil || !user.IsActive {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Account is inactive", nil)
			return
		}

		// Best effort; a failed stamp never blocks the request.
		if err := m.users.UpdateLastLogin(user.ID, time.Now().Unix()); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to stamp last login")
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		ctx = context.WithValue(ctx, apiContext.User, user)
		next(w, r.WithContext(ctx))
	}
}
