package models

type APIKey struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Key            string `json:"key,omitempty"`
	Name           string `json:"name"`
	IsActive       bool   `json:"is_active"`
	LastUsedAt     *int64 `json:"last_used_at,omitempty"`
	ExpiresAt      *int64 `json:"expires_at,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}
