package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/models"
	"taskhub/internal/platform/repositories"
)

type APIKeyHandler struct {
	keyRepo *repositories.APIKeyRepository
}

func NewAPIKeyHandler(keyRepo *repositories.APIKeyRepository) *APIKeyHandler {
	return &APIKeyHandler{keyRepo: keyRepo}
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	var req struct {
		Name          string `json:"name"`
		ExpiresInDays int    `json:"expires_in_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Name is required", nil)
		return
	}

	key := &models.APIKey{
		ID:             "key_" + uuid.NewString(),
		OrganizationID: claims.OrganizationID,
		Key:            auth.GenerateAPIKey(),
		Name:           req.Name,
		IsActive:       true,
		CreatedAt:      time.Now().Unix(),
	}
	if req.ExpiresInDays > 0 {
		exp := time.Now().Add(time.Duration(req.ExpiresInDays) * 24 * time.Hour).Unix()
		key.ExpiresAt = &exp
	}

	if err := h.keyRepo.Create(key); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create API key", nil)
		return
	}

	// The raw key is returned on creation only; list responses omit it.
	writeJSON(w, http.StatusCreated, key)
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	keys, err := h.keyRepo.ListByOrg(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	for _, key := range keys {
		key.Key = ""
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"api_keys": keys, "total": len(keys)})
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	revoked, err := h.keyRepo.Revoke(param(r, "key_id"), claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !revoked {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "API key not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
