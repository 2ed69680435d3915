package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	apiContext "taskhub/internal/api/context"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/repositories"
)

// APIKeyMiddleware authenticates integration routes. A key identifies
// an organization, not a user, so downstream handlers see only the Org
// context value.
type APIKeyMiddleware struct {
	keys *repositories.APIKeyRepository
	orgs *repositories.OrganizationRepository
}

func NewAPIKeyMiddleware(keys *repositories.APIKeyRepository, orgs *repositories.OrganizationRepository) *APIKeyMiddleware {
	return &APIKeyMiddleware{keys: keys, orgs: orgs}
}

func (m *APIKeyMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-API-Key")
		if raw == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing API key", nil)
			return
		}

		key, err := m.keys.GetActiveByKey(raw)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to validate API key", nil)
			return
		}
		if key == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
			return
		}
		if key.ExpiresAt != nil && *key.ExpiresAt < time.Now().Unix() {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "API key has expired", nil)
			return
		}

		org, err := m.orgs.GetByID(key.OrganizationID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load organization", nil)
			return
		}
		if org == nil || !org.IsActive {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Organization is inactive", nil)
			return
		}

		if err := m.keys.UpdateLastUsed(key.ID, time.Now().Unix()); err != nil {
			log.Warn().Err(err).Str("api_key_id", key.ID).Msg("failed to stamp api key usage")
		}

		ctx := context.WithValue(r.Context(), apiContext.Org, org)
		next(w, r.WithContext(ctx))
	}
}
