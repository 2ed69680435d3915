package handlers

import (
	"net/http"
	"strconv"
	"time"

	"taskhub/internal/engine/analytics"
	"taskhub/internal/engine/export"
	"taskhub/internal/engine/items"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
)

// IntegrationHandler serves the API-key surface. Keys authenticate an
// organization rather than a user, so this surface is read-only.
type IntegrationHandler struct {
	items     *items.Service
	analytics *analytics.Service
	export    *export.Service
}

func NewIntegrationHandler(itemSvc *items.Service, analyticsSvc *analytics.Service, exportSvc *export.Service) *IntegrationHandler {
	return &IntegrationHandler{items: itemSvc, analytics: analyticsSvc, export: exportSvc}
}

func (h *IntegrationHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	org := currentOrg(r)
	q := r.URL.Query()

	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := items.Filter{
		TeamID:   q.Get("team_id"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
		Skip:     skip,
		Limit:    limit,
	}

	list, err := h.items.List(org.ID, filter)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list, "total": len(list)})
}

func (h *IntegrationHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	org := currentOrg(r)

	item, err := h.items.Get(param(r, "item_id"), org.ID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *IntegrationHandler) ItemAnalytics(w http.ResponseWriter, r *http.Request) {
	org := currentOrg(r)

	stats, err := h.analytics.ItemAnalytics(org.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *IntegrationHandler) UsageAnalytics(w http.ResponseWriter, r *http.Request) {
	org := currentOrg(r)

	since := time.Now().Unix() - 86400
	stats, err := h.analytics.UsageAnalytics(org.ID, since)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *IntegrationHandler) ItemsCSV(w http.ResponseWriter, r *http.Request) {
	org := currentOrg(r)
	q := r.URL.Query()

	data, err := h.export.ItemsCSV(org.ID, export.Filter{
		TeamID:   q.Get("team_id"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	})
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Export failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="items.csv"`)
	w.Write(data)
}
