package analytics

import (
	"database/sql"
	"time"

	"taskhub/internal/platform/models"
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// ItemAnalytics is the per-organization item rollup.
type ItemAnalytics struct {
	TotalItems         int            `json:"total_items"`
	ByStatus           map[string]int `json:"by_status"`
	ByPriority         map[string]int `json:"by_priority"`
	OverdueCount       int            `json:"overdue_count"`
	CompletedLast7Days int            `json:"completed_last_7_days"`
	AvgActualHours     *float64       `json:"avg_actual_hours"`
}

func (s *Service) ItemAnalytics(orgID string) (*ItemAnalytics, error) {
	out := &ItemAnalytics{
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}

	rows, err := s.db.Query(`
		SELECT status, COUNT(*) FROM items WHERE organization_id = ? GROUP BY status
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out.ByStatus[status] = count
		out.TotalItems += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.Query(`
		SELECT priority, COUNT(*) FROM items WHERE organization_id = ? GROUP BY priority
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var priority string
		var count int
		if err := prows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		out.ByPriority[priority] = count
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM items
		WHERE organization_id = ? AND due_date IS NOT NULL AND due_date < ? AND status != ?
	`, orgID, now, models.StatusDone).Scan(&out.OverdueCount); err != nil {
		return nil, err
	}

	weekAgo := now - 7*86400
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM items
		WHERE organization_id = ? AND status = ? AND completed_at IS NOT NULL AND completed_at >= ?
	`, orgID, models.StatusDone, weekAgo).Scan(&out.CompletedLast7Days); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRow(`
		SELECT AVG(actual_hours) FROM items
		WHERE organization_id = ? AND actual_hours IS NOT NULL
	`, orgID).Scan(&avg); err != nil {
		return nil, err
	}
	if avg.Valid {
		out.AvgActualHours = &avg.Float64
	}
	return out, nil
}

// UsageAnalytics is the per-organization API usage rollup since a
// given timestamp.
type UsageAnalytics struct {
	TotalRequests     int            `json:"total_requests"`
	ByEndpoint        map[string]int `json:"by_endpoint"`
	AvgResponseTimeMS float64        `json:"avg_response_time_ms"`
	ErrorRate         float64        `json:"error_rate"`
}

func (s *Service) UsageAnalytics(orgID string, since int64) (*UsageAnalytics, error) {
	out := &UsageAnalytics{ByEndpoint: make(map[string]int)}

	rows, err := s.db.Query(`
		SELECT endpoint, COUNT(*) FROM usage_logs
		WHERE organization_id = ? AND created_at >= ?
		GROUP BY endpoint
	`, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var endpoint string
		var count int
		if err := rows.Scan(&endpoint, &count); err != nil {
			return nil, err
		}
		out.ByEndpoint[endpoint] = count
		out.TotalRequests += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out.TotalRequests == 0 {
		return out, nil
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRow(`
		SELECT AVG(response_time_ms) FROM usage_logs
		WHERE organization_id = ? AND created_at >= ?
	`, orgID, since).Scan(&avg); err != nil {
		return nil, err
	}
	out.AvgResponseTimeMS = avg.Float64

	var errored int
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM usage_logs
		WHERE organization_id = ? AND created_at >= ? AND status_code >= 400
	`, orgID, since).Scan(&errored); err != nil {
		return nil, err
	}
	out.ErrorRate = float64(errored) / float64(out.TotalRequests)
	return out, nil
}
