package repositories

import (
	"database/sql"
	"time"

	"taskhub/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(wh *models.Webhook) error {
	_, err := r.db.Exec(`
		INSERT INTO webhooks (id, organization_id, url, events, secret, is_active, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, wh.ID, wh.OrganizationID, wh.URL, wh.Events, wh.Secret, wh.IsActive, wh.CreatedAt)
	return err
}

func (r *WebhookRepository) ListActiveByOrg(orgID string) ([]*models.Webhook, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, url, events, secret, is_active, last_error, retry_count, last_triggered_at, created_at
		FROM webhooks WHERE organization_id = ? AND is_active = 1
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWebhooks(rows)
}

func (r *WebhookRepository) ListByOrg(orgID string) ([]*models.Webhook, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, url, events, secret, is_active, last_error, retry_count, last_triggered_at, created_at
		FROM webhooks WHERE organization_id = ? ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWebhooks(rows)
}

func scanWebhooks(rows *sql.Rows) ([]*models.Webhook, error) {
	var hooks []*models.Webhook
	for rows.Next() {
		wh := &models.Webhook{}
		if err := rows.Scan(&wh.ID, &wh.OrganizationID, &wh.URL, &wh.Events, &wh.Secret, &wh.IsActive,
			&wh.LastError, &wh.RetryCount, &wh.LastTriggeredAt, &wh.CreatedAt); err != nil {
			return nil, err
		}
		hooks = append(hooks, wh)
	}
	return hooks, rows.Err()
}

func (r *WebhookRepository) UpdateLastError(id, lastError string) error {
	_, err := r.db.Exec(`UPDATE webhooks SET last_error = ?, retry_count = retry_count + 1 WHERE id = ?`, lastError, id)
	return err
}

func (r *WebhookRepository) MarkDelivered(id string) error {
	_, err := r.db.Exec(`UPDATE webhooks SET last_triggered_at = ?, retry_count = 0, last_error = NULL WHERE id = ?`, time.Now().Unix(), id)
	return err
}

func (r *WebhookRepository) Delete(id, orgID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM webhooks WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
