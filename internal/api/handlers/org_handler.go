package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/repositories"
)

type OrgHandler struct {
	orgRepo *repositories.OrganizationRepository
}

func NewOrgHandler(orgRepo *repositories.OrganizationRepository) *OrgHandler {
	return &OrgHandler{orgRepo: orgRepo}
}

func (h *OrgHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	org, err := h.orgRepo.GetByID(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	var req struct {
		Name     *string `json:"name"`
		MaxUsers *int    `json:"max_users"`
		MaxItems *int    `json:"max_items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.orgRepo.GetByID(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}

	if req.Name != nil && *req.Name != "" {
		org.Name = *req.Name
	}
	if req.MaxUsers != nil && *req.MaxUsers > 0 {
		org.MaxUsers = *req.MaxUsers
	}
	if req.MaxItems != nil && *req.MaxItems > 0 {
		org.MaxItems = *req.MaxItems
	}
	org.UpdatedAt = time.Now().Unix()

	if err := h.orgRepo.Update(org); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update organization", nil)
		return
	}
	writeJSON(w, http.StatusOK, org)
}
