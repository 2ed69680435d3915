package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"taskhub/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(key *models.APIKey) error {
	if key.ID == "" {
		key.ID = "key_" + uuid.New().String()
	}
	key.CreatedAt = time.Now().Unix()

	_, err := r.db.Exec(`
		INSERT INTO api_keys (id, organization_id, key, name, is_active, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key.ID, key.OrganizationID, key.Key, key.Name, key.IsActive, key.ExpiresAt, key.CreatedAt)
	return err
}

func (r *APIKeyRepository) GetActiveByKey(rawKey string) (*models.APIKey, error) {
	k := &models.APIKey{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, key, name, is_active, last_used_at, expires_at, created_at
		FROM api_keys WHERE key = ? AND is_active = 1
	`, rawKey).Scan(&k.ID, &k.OrganizationID, &k.Key, &k.Name, &k.IsActive, &k.LastUsedAt, &k.ExpiresAt, &k.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return k, nil
}

func (r *APIKeyRepository) ListByOrg(orgID string) ([]*models.APIKey, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, key, name, is_active, last_used_at, expires_at, created_at
		FROM api_keys WHERE organization_id = ? ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		k := &models.APIKey{}
		if err := rows.Scan(&k.ID, &k.OrganizationID, &k.Key, &k.Name, &k.IsActive, &k.LastUsedAt, &k.ExpiresAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) UpdateLastUsed(id string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, timestamp, id)
	return err
}

func (r *APIKeyRepository) Revoke(id, orgID string) (bool, error) {
	res, err := r.db.Exec(`UPDATE api_keys SET is_active = 0 WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
