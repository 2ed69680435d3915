package notifications

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"taskhub/internal/platform/models"
)

// GetOrCreatePreferences returns the user's preference row, creating the
// defaults on first access.
func (r *Repository) GetOrCreatePreferences(userID string) (*models.NotificationPreference, error) {
	p, err := r.getPreferences(userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	p = models.DefaultPreferences(userID)
	p.ID = "npf_" + uuid.New().String()
	p.CreatedAt = time.Now().Unix()
	p.UpdatedAt = p.CreatedAt

	_, err = r.db.Exec(`
		INSERT INTO notification_preferences (id, user_id, email_enabled, email_item_assigned,
			email_item_updated, email_comment_added, email_mention, inapp_enabled,
			inapp_item_assigned, inapp_item_updated, inapp_comment_added, inapp_mention,
			daily_digest, weekly_digest, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.EmailEnabled, p.EmailItemAssigned, p.EmailItemUpdated, p.EmailCommentAdded,
		p.EmailMention, p.InAppEnabled, p.InAppItemAssigned, p.InAppItemUpdated, p.InAppCommentAdded,
		p.InAppMention, p.DailyDigest, p.WeeklyDigest, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		// Lost a race with a concurrent first access; the existing row wins.
		if existing, gerr := r.getPreferences(userID); gerr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *Repository) getPreferences(userID string) (*models.NotificationPreference, error) {
	p := &models.NotificationPreference{}
	err := r.db.QueryRow(`
		SELECT id, user_id, email_enabled, email_item_assigned, email_item_updated,
			email_comment_added, email_mention, inapp_enabled, inapp_item_assigned,
			inapp_item_updated, inapp_comment_added, inapp_mention, daily_digest, weekly_digest,
			created_at, updated_at
		FROM notification_preferences WHERE user_id = ?
	`, userID).Scan(&p.ID, &p.UserID, &p.EmailEnabled, &p.EmailItemAssigned, &p.EmailItemUpdated,
		&p.EmailCommentAdded, &p.EmailMention, &p.InAppEnabled, &p.InAppItemAssigned,
		&p.InAppItemUpdated, &p.InAppCommentAdded, &p.InAppMention, &p.DailyDigest, &p.WeeklyDigest,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// PreferencePatch carries partial preference updates; nil fields keep
// their current value.
type PreferencePatch struct {
	EmailEnabled      *bool `json:"email_enabled"`
	EmailItemAssigned *bool `json:"email_item_assigned"`
	EmailItemUpdated  *bool `json:"email_item_updated"`
	EmailCommentAdded *bool `json:"email_comment_added"`
	EmailMention      *bool `json:"email_mention"`
	InAppEnabled      *bool `json:"inapp_enabled"`
	InAppItemAssigned *bool `json:"inapp_item_assigned"`
	InAppItemUpdated  *bool `json:"inapp_item_updated"`
	InAppCommentAdded *bool `json:"inapp_comment_added"`
	InAppMention      *bool `json:"inapp_mention"`
	DailyDigest       *bool `json:"daily_digest"`
	WeeklyDigest      *bool `json:"weekly_digest"`
}

func (r *Repository) UpdatePreferences(userID string, patch PreferencePatch) (*models.NotificationPreference, error) {
	p, err := r.GetOrCreatePreferences(userID)
	if err != nil {
		return nil, err
	}

	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.EmailEnabled, patch.EmailEnabled)
	set(&p.EmailItemAssigned, patch.EmailItemAssigned)
	set(&p.EmailItemUpdated, patch.EmailItemUpdated)
	set(&p.EmailCommentAdded, patch.EmailCommentAdded)
	set(&p.EmailMention, patch.EmailMention)
	set(&p.InAppEnabled, patch.InAppEnabled)
	set(&p.InAppItemAssigned, patch.InAppItemAssigned)
	set(&p.InAppItemUpdated, patch.InAppItemUpdated)
	set(&p.InAppCommentAdded, patch.InAppCommentAdded)
	set(&p.InAppMention, patch.InAppMention)
	set(&p.DailyDigest, patch.DailyDigest)
	set(&p.WeeklyDigest, patch.WeeklyDigest)
	p.UpdatedAt = time.Now().Unix()

	_, err = r.db.Exec(`
		UPDATE notification_preferences SET email_enabled = ?, email_item_assigned = ?,
			email_item_updated = ?, email_comment_added = ?, email_mention = ?, inapp_enabled = ?,
			inapp_item_assigned = ?, inapp_item_updated = ?, inapp_comment_added = ?,
			inapp_mention = ?, daily_digest = ?, weekly_digest = ?, updated_at = ?
		WHERE user_id = ?
	`, p.EmailEnabled, p.EmailItemAssigned, p.EmailItemUpdated, p.EmailCommentAdded, p.EmailMention,
		p.InAppEnabled, p.InAppItemAssigned, p.InAppItemUpdated, p.InAppCommentAdded, p.InAppMention,
		p.DailyDigest, p.WeeklyDigest, p.UpdatedAt, userID)
	if err != nil {
		return nil, err
	}
	return p, nil
}
