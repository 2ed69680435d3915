package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"taskhub/internal/engine/items"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
)

type ItemHandler struct {
	service *items.Service
}

func NewItemHandler(service *items.Service) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	user := currentUser(r)

	var input items.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	item, err := h.service.Create(claims.OrganizationID, user, input)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	q := r.URL.Query()

	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := items.Filter{
		TeamID:     q.Get("team_id"),
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssigneeID: q.Get("assignee_id"),
		Search:     q.Get("search"),
		Skip:       skip,
		Limit:      limit,
	}

	list, err := h.service.List(claims.OrganizationID, filter)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list, "total": len(list)})
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	item, err := h.service.Get(param(r, "item_id"), claims.OrganizationID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	user := currentUser(r)

	var patch items.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	item, err := h.service.Update(param(r, "item_id"), claims.OrganizationID, user, patch)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	user := currentUser(r)

	if err := h.service.Delete(param(r, "item_id"), claims.OrganizationID, user); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	user := currentUser(r)

	var req struct {
		Filename string `json:"filename"`
		FilePath string `json:"file_path"`
		FileSize int64  `json:"file_size"`
		MimeType string `json:"mime_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Filename == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Filename is required", nil)
		return
	}

	att := &models.Attachment{
		Filename: req.Filename,
		FilePath: req.FilePath,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
	}
	created, err := h.service.AddAttachment(param(r, "item_id"), claims.OrganizationID, user, att)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ItemHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	attachments, err := h.service.ListAttachments(param(r, "item_id"), claims.OrganizationID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	if attachments == nil {
		attachments = []*models.Attachment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attachments": attachments, "total": len(attachments)})
}
