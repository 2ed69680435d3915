package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
	"taskhub/internal/platform/repositories"
)

var knownWebhookEvents = map[string]bool{
	"item.created":    true,
	"item.updated":    true,
	"item.completed":  true,
	"item.deleted":    true,
	"comment.created": true,
}

type WebhookHandler struct {
	webhookRepo *repositories.WebhookRepository
}

func NewWebhookHandler(webhookRepo *repositories.WebhookRepository) *WebhookHandler {
	return &WebhookHandler{webhookRepo: webhookRepo}
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	var req struct {
		URL    string   `json:"url"`
		Events []string `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "A valid http(s) URL is required", nil)
		return
	}
	if len(req.Events) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "At least one event is required", nil)
		return
	}
	for _, event := range req.Events {
		if !knownWebhookEvents[event] {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown event: "+event, nil)
			return
		}
	}

	wh := &models.Webhook{
		ID:             "wh_" + uuid.NewString(),
		OrganizationID: claims.OrganizationID,
		URL:            req.URL,
		Events:         strings.Join(req.Events, ","),
		Secret:         uuid.NewString(),
		IsActive:       true,
		CreatedAt:      time.Now().Unix(),
	}
	if err := h.webhookRepo.Create(wh); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create webhook", nil)
		return
	}

	// The secret is returned once so the receiver can verify signatures.
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"webhook": wh,
		"secret":  wh.Secret,
	})
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	hooks, err := h.webhookRepo.ListByOrg(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"webhooks": hooks, "total": len(hooks)})
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	deleted, err := h.webhookRepo.Delete(param(r, "webhook_id"), claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
