package items

import (
	"database/sql"
	"strings"

	"taskhub/internal/platform/models"
)

// maxListLimit is the caller-facing bound on list pagination.
const maxListLimit = 1000

type Filter struct {
	TeamID     string
	Status     string
	Priority   string
	AssigneeID string
	Search     string
	Skip       int
	Limit      int
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Begin() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *Repository) CreateTx(tx *sql.Tx, item *models.Item) error {
	_, err := tx.Exec(`
		INSERT INTO items (id, organization_id, team_id, created_by_id, parent_item_id, title, description,
			status, priority, due_date, completed_at, estimated_hours, actual_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.OrganizationID, item.TeamID, item.CreatedByID, item.ParentItemID, item.Title, item.Description,
		item.Status, item.Priority, item.DueDate, item.CompletedAt, item.EstimatedHours, item.ActualHours,
		item.CreatedAt, item.UpdatedAt)
	return err
}

func (r *Repository) UpdateTx(tx *sql.Tx, item *models.Item) error {
	_, err := tx.Exec(`
		UPDATE items SET team_id = ?, title = ?, description = ?, status = ?, priority = ?,
			due_date = ?, completed_at = ?, estimated_hours = ?, actual_hours = ?, updated_at = ?
		WHERE id = ? AND organization_id = ?
	`, item.TeamID, item.Title, item.Description, item.Status, item.Priority,
		item.DueDate, item.CompletedAt, item.EstimatedHours, item.ActualHours, item.UpdatedAt,
		item.ID, item.OrganizationID)
	return err
}

// DeleteTx removes the item and everything hanging off it. Subtasks
// survive with their parent reference cleared.
func (r *Repository) DeleteTx(tx *sql.Tx, itemID string) error {
	statements := []string{
		`UPDATE items SET parent_item_id = NULL WHERE parent_item_id = ?`,
		`DELETE FROM comments WHERE item_id = ?`,
		`DELETE FROM attachments WHERE item_id = ?`,
		`DELETE FROM activity_logs WHERE item_id = ?`,
		`DELETE FROM notifications WHERE item_id = ?`,
		`DELETE FROM item_assignees WHERE item_id = ?`,
		`DELETE FROM item_tags WHERE item_id = ?`,
		`DELETE FROM items WHERE id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, itemID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetByID(itemID, orgID string) (*models.Item, error) {
	item, err := scanItem(r.db.QueryRow(`
		SELECT id, organization_id, team_id, created_by_id, parent_item_id, title, description,
			status, priority, due_date, completed_at, estimated_hours, actual_hours, created_at, updated_at
		FROM items WHERE id = ? AND organization_id = ?
	`, itemID, orgID))
	if err != nil || item == nil {
		return item, err
	}
	if err := r.loadSets(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) List(orgID string, filter Filter) ([]*models.Item, error) {
	query := `
		SELECT i.id, i.organization_id, i.team_id, i.created_by_id, i.parent_item_id, i.title, i.description,
			i.status, i.priority, i.due_date, i.completed_at, i.estimated_hours, i.actual_hours, i.created_at, i.updated_at
		FROM items i
		WHERE i.organization_id = ?
	`
	args := []interface{}{orgID}

	if filter.TeamID != "" {
		query += ` AND i.team_id = ?`
		args = append(args, filter.TeamID)
	}
	if filter.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += ` AND i.priority = ?`
		args = append(args, filter.Priority)
	}
	if filter.AssigneeID != "" {
		query += ` AND EXISTS (SELECT 1 FROM item_assignees ia WHERE ia.item_id = i.id AND ia.user_id = ?)`
		args = append(args, filter.AssigneeID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query += ` AND (LOWER(i.title) LIKE ? OR LOWER(i.description) LIKE ?)`
		args = append(args, pattern, pattern)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, skip)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := r.loadSets(item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ResolveAssigneeIDs keeps only ids that resolve to users of the given
// organization. Unresolvable ids are silently dropped.
func (r *Repository) ResolveAssigneeIDs(orgID string, ids []string) ([]string, error) {
	return r.resolveIDs(`SELECT id FROM users WHERE organization_id = ? AND id IN (%s)`, orgID, ids)
}

// ResolveTagIDs keeps only ids that resolve in the shared tag pool.
func (r *Repository) ResolveTagIDs(ids []string) ([]string, error) {
	return r.resolveIDs(`SELECT id FROM tags WHERE id IN (%s)`, "", ids)
}

func (r *Repository) resolveIDs(queryTmpl, orgID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	var args []interface{}
	if orgID != "" {
		args = append(args, orgID)
	}
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.Query(strings.Replace(queryTmpl, "%s", placeholders, 1), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Preserve the caller's ordering.
	found := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var resolved []string
	for _, id := range ids {
		if found[id] {
			resolved = append(resolved, id)
		}
	}
	return resolved, nil
}

func (r *Repository) ReplaceAssigneesTx(tx *sql.Tx, itemID string, userIDs []string) error {
	if _, err := tx.Exec(`DELETE FROM item_assignees WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	for _, userID := range userIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO item_assignees (item_id, user_id) VALUES (?, ?)`, itemID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) ReplaceTagsTx(tx *sql.Tx, itemID string, tagIDs []string) error {
	if _, err := tx.Exec(`DELETE FROM item_tags WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO item_tags (item_id, tag_id) VALUES (?, ?)`, itemID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) TeamExists(teamID, orgID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM teams WHERE id = ? AND organization_id = ?)`, teamID, orgID).Scan(&exists)
	return exists, err
}

func (r *Repository) ItemExists(itemID, orgID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM items WHERE id = ? AND organization_id = ?)`, itemID, orgID).Scan(&exists)
	return exists, err
}

func (r *Repository) CreateAttachment(att *models.Attachment) error {
	_, err := r.db.Exec(`
		INSERT INTO attachments (id, item_id, filename, file_path, file_size, mime_type, uploaded_by_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, att.ID, att.ItemID, att.Filename, att.FilePath, att.FileSize, att.MimeType, att.UploadedByID, att.CreatedAt)
	return err
}

func (r *Repository) ListAttachments(itemID string) ([]*models.Attachment, error) {
	rows, err := r.db.Query(`
		SELECT id, item_id, filename, file_path, file_size, mime_type, uploaded_by_id, created_at
		FROM attachments WHERE item_id = ? ORDER BY created_at ASC
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atts []*models.Attachment
	for rows.Next() {
		att := &models.Attachment{}
		if err := rows.Scan(&att.ID, &att.ItemID, &att.Filename, &att.FilePath, &att.FileSize,
			&att.MimeType, &att.UploadedByID, &att.CreatedAt); err != nil {
			return nil, err
		}
		atts = append(atts, att)
	}
	return atts, rows.Err()
}

func (r *Repository) loadSets(item *models.Item) error {
	assignees, err := r.linkedIDs(`SELECT user_id FROM item_assignees WHERE item_id = ?`, item.ID)
	if err != nil {
		return err
	}
	tags, err := r.linkedIDs(`SELECT tag_id FROM item_tags WHERE item_id = ?`, item.ID)
	if err != nil {
		return err
	}
	item.AssigneeIDs = assignees
	item.TagIDs = tags
	return nil
}

func (r *Repository) linkedIDs(query, itemID string) ([]string, error) {
	rows, err := r.db.Query(query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanItem(s interface {
	Scan(dest ...interface{}) error
}) (*models.Item, error) {
	item := &models.Item{}
	err := s.Scan(
		&item.ID,
		&item.OrganizationID,
		&item.TeamID,
		&item.CreatedByID,
		&item.ParentItemID,
		&item.Title,
		&item.Description,
		&item.Status,
		&item.Priority,
		&item.DueDate,
		&item.CompletedAt,
		&item.EstimatedHours,
		&item.ActualHours,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}
