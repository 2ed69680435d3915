package notifications

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"taskhub/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(n *models.Notification) error {
	if n.ID == "" {
		n.ID = "ntf_" + uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	if n.Priority == "" {
		n.Priority = models.NotifyPriorityNormal
	}

	_, err := r.db.Exec(`
		INSERT INTO notifications (id, user_id, item_id, comment_id, title, message, type, priority,
			is_read, read_at, metadata, action_url, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.ItemID, n.CommentID, n.Title, n.Message, n.Type, n.Priority,
		nullIfEmpty(n.Metadata), n.ActionURL, n.CreatedAt, n.ExpiresAt)
	return err
}

func (r *Repository) GetByID(id, userID string) (*models.Notification, error) {
	n := &models.Notification{}
	var metadata sql.NullString
	err := r.db.QueryRow(`
		SELECT id, user_id, item_id, comment_id, title, message, type, priority, is_read, read_at,
			metadata, action_url, created_at, expires_at
		FROM notifications WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&n.ID, &n.UserID, &n.ItemID, &n.CommentID, &n.Title, &n.Message, &n.Type,
		&n.Priority, &n.IsRead, &n.ReadAt, &metadata, &n.ActionURL, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	n.Metadata = metadata.String
	return n, nil
}

type ListFilter struct {
	IsRead   *bool
	Type     string
	Priority string
	Skip     int
	Limit    int
}

func (r *Repository) List(userID string, filter ListFilter) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, item_id, comment_id, title, message, type, priority, is_read, read_at,
			metadata, action_url, created_at, expires_at
		FROM notifications
		WHERE user_id = ? AND (expires_at IS NULL OR expires_at > ?)
	`
	args := []interface{}{userID, time.Now().Unix()}

	if filter.IsRead != nil {
		query += ` AND is_read = ?`
		args = append(args, *filter.IsRead)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, filter.Priority)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, skip)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var metadata sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.ItemID, &n.CommentID, &n.Title, &n.Message, &n.Type,
			&n.Priority, &n.IsRead, &n.ReadAt, &metadata, &n.ActionURL, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, err
		}
		n.Metadata = metadata.String
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *Repository) MarkRead(id, userID string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE notifications SET is_read = 1, read_at = ? WHERE id = ? AND user_id = ? AND is_read = 0
	`, time.Now().Unix(), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) MarkAllRead(userID string) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE notifications SET is_read = 1, read_at = ? WHERE user_id = ? AND is_read = 0
	`, time.Now().Unix(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) MarkBulkRead(ids []string, userID string) (int64, error) {
	var total int64
	now := time.Now().Unix()
	for _, id := range ids {
		res, err := r.db.Exec(`
			UPDATE notifications SET is_read = 1, read_at = ? WHERE id = ? AND user_id = ? AND is_read = 0
		`, now, id, userID)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *Repository) Delete(id, userID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) DeleteAllRead(userID string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM notifications WHERE user_id = ? AND is_read = 1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type Stats struct {
	Total      int            `json:"total_notifications"`
	Unread     int            `json:"unread_count"`
	Read       int            `json:"read_count"`
	ByType     map[string]int `json:"by_type"`
	ByPriority map[string]int `json:"by_priority"`
}

func (r *Repository) GetStats(userID string) (*Stats, error) {
	stats := &Stats{
		ByType:     make(map[string]int),
		ByPriority: make(map[string]int),
	}

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = ?`, userID).Scan(&stats.Total); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&stats.Unread); err != nil {
		return nil, err
	}
	stats.Read = stats.Total - stats.Unread

	rows, err := r.db.Query(`SELECT type, COUNT(*) FROM notifications WHERE user_id = ? GROUP BY type`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var count int
		if err := rows.Scan(&t, &count); err != nil {
			return nil, err
		}
		stats.ByType[t] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.Query(`SELECT priority, COUNT(*) FROM notifications WHERE user_id = ? GROUP BY priority`, userID)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var p string
		var count int
		if err := prows.Scan(&p, &count); err != nil {
			return nil, err
		}
		stats.ByPriority[p] = count
	}
	return stats, prows.Err()
}

// HasOverdueNoticeSince reports whether an overdue notification for the
// item exists at or after the given timestamp.
func (r *Repository) HasOverdueNoticeSince(itemID string, since int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM notifications WHERE item_id = ? AND type = ? AND created_at >= ?)
	`, itemID, models.NotifyItemOverdue, since).Scan(&exists)
	return exists, err
}

// OverdueCandidates returns items past due that are neither done nor
// archived, with assignee sets loaded. The sweep crosses tenants by
// design: each notification targets its own item's users.
func (r *Repository) OverdueCandidates(now int64) ([]*models.Item, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, created_by_id, title, priority, due_date
		FROM items
		WHERE due_date IS NOT NULL AND due_date < ? AND status NOT IN (?, ?)
	`, now, models.StatusDone, models.StatusArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.OrganizationID, &item.CreatedByID, &item.Title, &item.Priority, &item.DueDate); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		arows, err := r.db.Query(`SELECT user_id FROM item_assignees WHERE item_id = ?`, item.ID)
		if err != nil {
			return nil, err
		}
		for arows.Next() {
			var id string
			if err := arows.Scan(&id); err != nil {
				arows.Close()
				return nil, err
			}
			item.AssigneeIDs = append(item.AssigneeIDs, id)
		}
		if err := arows.Err(); err != nil {
			arows.Close()
			return nil, err
		}
		arows.Close()
	}
	return items, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
