package models

import "strings"

type Webhook struct {
	ID              string  `json:"id"`
	OrganizationID  string  `json:"organization_id"`
	URL             string  `json:"url"`
	Events          string  `json:"events"` // comma-separated: item.created,item.updated
	Secret          string  `json:"-"`
	IsActive        bool    `json:"is_active"`
	LastError       *string `json:"last_error,omitempty"`
	RetryCount      int     `json:"retry_count"`
	LastTriggeredAt *int64  `json:"last_triggered_at,omitempty"`
	CreatedAt       int64   `json:"created_at"`
}

// Subscribed reports whether the webhook's event list contains event.
func (w *Webhook) Subscribed(event string) bool {
	for _, e := range strings.Split(w.Events, ",") {
		if strings.TrimSpace(e) == event {
			return true
		}
	}
	return false
}

type WebhookEvent struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	OrgID     string      `json:"organization_id"`
	Data      interface{} `json:"data"`
}
