package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	apiContext "taskhub/internal/api/context"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/models"
	"taskhub/internal/platform/repositories"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// UsageMiddleware records one usage log row per authenticated request,
// best-effort.
type UsageMiddleware struct {
	usage *repositories.UsageLogRepository
}

func NewUsageMiddleware(usage *repositories.UsageLogRepository) *UsageMiddleware {
	return &UsageMiddleware{usage: usage}
}

func (m *UsageMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)

		var orgID string
		if claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims); ok && claims != nil {
			orgID = claims.OrganizationID
		} else if org, ok := r.Context().Value(apiContext.Org).(*models.Organization); ok && org != nil {
			orgID = org.ID
		}
		if orgID == "" {
			return
		}

		entry := &models.UsageLog{
			OrganizationID: orgID,
			Endpoint:       r.URL.Path,
			Method:         r.Method,
			StatusCode:     rec.status,
			ResponseTimeMS: time.Since(start).Milliseconds(),
		}
		if err := m.usage.Record(entry); err != nil {
			log.Warn().Err(err).Str("org_id", orgID).Msg("failed to record usage log")
		}
	}
}
