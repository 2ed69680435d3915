package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"taskhub/internal/platform/models"
)

type UsageLogRepository struct {
	db *sql.DB
}

func NewUsageLogRepository(db *sql.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

func (r *UsageLogRepository) Record(entry *models.UsageLog) error {
	if entry.ID == "" {
		entry.ID = "usg_" + uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.Exec(`
		INSERT INTO usage_logs (id, organization_id, endpoint, method, status_code, response_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.OrganizationID, entry.Endpoint, entry.Method, entry.StatusCode, entry.ResponseTimeMS, entry.CreatedAt)
	return err
}

func (r *UsageLogRepository) ListSince(orgID string, since int64) ([]*models.UsageLog, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, endpoint, method, status_code, response_time_ms, created_at
		FROM usage_logs WHERE organization_id = ? AND created_at >= ?
	`, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.UsageLog
	for rows.Next() {
		entry := &models.UsageLog{}
		if err := rows.Scan(&entry.ID, &entry.OrganizationID, &entry.Endpoint, &entry.Method,
			&entry.StatusCode, &entry.ResponseTimeMS, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
