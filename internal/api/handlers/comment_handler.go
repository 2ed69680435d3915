package handlers

import (
	"encoding/json"
	"net/http"

	"taskhub/internal/engine/comments"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
)

type CommentHandler struct {
	service *comments.Service
}

func NewCommentHandler(service *comments.Service) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	user := currentUser(r)

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	comment, err := h.service.Add(param(r, "item_id"), claims.OrganizationID, user, req.Content)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	list, err := h.service.ListByItem(param(r, "item_id"), claims.OrganizationID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": list, "total": len(list)})
}
