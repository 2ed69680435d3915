package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"taskhub/internal/engine/notifications"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
)

type NotificationHandler struct {
	service *notifications.Service
}

func NewNotificationHandler(service *notifications.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	q := r.URL.Query()

	filter := notifications.ListFilter{
		Type:     q.Get("type"),
		Priority: q.Get("priority"),
	}
	if v := q.Get("is_read"); v != "" {
		isRead := v == "true"
		filter.IsRead = &isRead
	}
	filter.Skip, _ = strconv.Atoi(q.Get("skip"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	list, err := h.service.List(claims.UserID, filter)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": list, "total": len(list)})
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	n, err := h.service.Get(param(r, "notification_id"), claims.UserID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	n, err := h.service.MarkRead(param(r, "notification_id"), claims.UserID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	updated, err := h.service.MarkAllRead(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": updated})
}

func (h *NotificationHandler) MarkBulkRead(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	var req struct {
		NotificationIDs []string `json:"notification_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if len(req.NotificationIDs) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "notification_ids is required", nil)
		return
	}

	updated, err := h.service.MarkBulkRead(req.NotificationIDs, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": updated})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	if err := h.service.Delete(param(r, "notification_id"), claims.UserID); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) DeleteAllRead(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	deleted, err := h.service.DeleteAllRead(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	stats, err := h.service.GetStats(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	prefs, err := h.service.GetPreferences(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	var patch notifications.PreferencePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	prefs, err := h.service.UpdatePreferences(claims.UserID, patch)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
