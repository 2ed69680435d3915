package handlers

import (
	"net/http"
	"strconv"
	"time"

	"taskhub/internal/engine/analytics"
	"taskhub/internal/pkg/errors"
)

type AnalyticsHandler struct {
	service *analytics.Service
}

func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Items(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	stats, err := h.service.ItemAnalytics(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 || days > 90 {
		days = 1
	}
	since := time.Now().Unix() - int64(days)*86400

	stats, err := h.service.UsageAnalytics(claims.OrganizationID, since)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
