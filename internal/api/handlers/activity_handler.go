package handlers

import (
	"net/http"
	"strconv"

	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/activity"
)

type ActivityHandler struct {
	logger *activity.Logger
}

func NewActivityHandler(logger *activity.Logger) *ActivityHandler {
	return &ActivityHandler{logger: logger}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))

	entries, err := h.logger.ListByOrg(claims.OrganizationID, q.Get("item_id"), limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if entries == nil {
		entries = []*activity.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": entries, "total": len(entries)})
}
