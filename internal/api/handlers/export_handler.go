package handlers

import (
	"net/http"

	"taskhub/internal/engine/export"
	"taskhub/internal/pkg/errors"
)

type ExportHandler struct {
	service *export.Service
}

func NewExportHandler(service *export.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

func exportFilter(r *http.Request) export.Filter {
	q := r.URL.Query()
	return export.Filter{
		TeamID:   q.Get("team_id"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	}
}

func (h *ExportHandler) ItemsCSV(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	data, err := h.service.ItemsCSV(claims.OrganizationID, exportFilter(r))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Export failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="items.csv"`)
	w.Write(data)
}

func (h *ExportHandler) ItemsJSON(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	includeComments := r.URL.Query().Get("include_comments") == "true"

	data, err := h.service.ItemsJSON(claims.OrganizationID, exportFilter(r), includeComments)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Export failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="items.json"`)
	w.Write(data)
}

func (h *ExportHandler) ActivityCSV(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	data, err := h.service.ActivityCSV(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Export failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="activity.csv"`)
	w.Write(data)
}

func (h *ExportHandler) TeamReport(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	report, err := h.service.TeamReport(claims.OrganizationID, param(r, "team_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ExportHandler) UserReport(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	report, err := h.service.UserReport(claims.OrganizationID, param(r, "user_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ExportHandler) OrgSummary(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	report, err := h.service.OrgSummary(claims.OrganizationID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
