package models

// Notification type wire values.
const (
	NotifyItemCreated   = "item_created"
	NotifyItemUpdated   = "item_updated"
	NotifyItemAssigned  = "item_assigned"
	NotifyItemCompleted = "item_completed"
	NotifyItemOverdue   = "item_overdue"
	NotifyCommentAdded  = "comment_added"
	NotifyMention       = "mention"
	NotifyTeamAdded     = "team_added"
	NotifySystem        = "system"
)

// Notification priority wire values.
const (
	NotifyPriorityLow    = "low"
	NotifyPriorityNormal = "normal"
	NotifyPriorityHigh   = "high"
	NotifyPriorityUrgent = "urgent"
)

type Notification struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	ItemID    *string `json:"item_id,omitempty"`
	CommentID *string `json:"comment_id,omitempty"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	Priority  string  `json:"priority"`
	IsRead    bool    `json:"is_read"`
	ReadAt    *int64  `json:"read_at,omitempty"`
	Metadata  string  `json:"metadata,omitempty"`
	ActionURL string  `json:"action_url,omitempty"`
	CreatedAt int64   `json:"created_at"`
	ExpiresAt *int64  `json:"expires_at,omitempty"`
}

type NotificationPreference struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	EmailEnabled      bool `json:"email_enabled"`
	EmailItemAssigned bool `json:"email_item_assigned"`
	EmailItemUpdated  bool `json:"email_item_updated"`
	EmailCommentAdded bool `json:"email_comment_added"`
	EmailMention      bool `json:"email_mention"`

	InAppEnabled      bool `json:"inapp_enabled"`
	InAppItemAssigned bool `json:"inapp_item_assigned"`
	InAppItemUpdated  bool `json:"inapp_item_updated"`
	InAppCommentAdded bool `json:"inapp_comment_added"`
	InAppMention      bool `json:"inapp_mention"`

	DailyDigest  bool `json:"daily_digest"`
	WeeklyDigest bool `json:"weekly_digest"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// DefaultPreferences are applied when a user's row is auto-created on
// first access.
func DefaultPreferences(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:            userID,
		EmailEnabled:      true,
		EmailItemAssigned: true,
		EmailItemUpdated:  true,
		EmailCommentAdded: true,
		EmailMention:      true,
		InAppEnabled:      true,
		InAppItemAssigned: true,
		InAppItemUpdated:  true,
		InAppCommentAdded: true,
		InAppMention:      true,
	}
}
