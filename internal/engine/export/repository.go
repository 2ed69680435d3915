package export

import (
	"database/sql"

	"taskhub/internal/platform/models"
)

const maxExportRows = 10000

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows an item export; zero values are ignored.
type Filter struct {
	TeamID   string
	Status   string
	Priority string
}

// Record is an item denormalized for export output.
type Record struct {
	Item          *models.Item
	CreatedByName string
	AssigneeNames []string
	TagNames      []string
	Comments      []*models.Comment
}

func (r *Repository) ListItems(orgID string, filter Filter) ([]*Record, error) {
	query := `
		SELECT i.id, i.organization_id, i.team_id, i.created_by_id, i.parent_item_id, i.title,
			i.description, i.status, i.priority, i.due_date, i.completed_at, i.estimated_hours,
			i.actual_hours, i.created_at, i.updated_at, COALESCE(u.username, '')
		FROM items i
		LEFT JOIN users u ON u.id = i.created_by_id
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
	query += ` ORDER BY i.created_at DESC, i.id DESC LIMIT ?`
	args = append(args, maxExportRows)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		item := &models.Item{}
		rec := &Record{Item: item}
		if err := rows.Scan(&item.ID, &item.OrganizationID, &item.TeamID, &item.CreatedByID,
			&item.ParentItemID, &item.Title, &item.Description, &item.Status, &item.Priority,
			&item.DueDate, &item.CompletedAt, &item.EstimatedHours, &item.ActualHours,
			&item.CreatedAt, &item.UpdatedAt, &rec.CreatedByName); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if err := r.loadNames(rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *Repository) loadNames(rec *Record) error {
	arows, err := r.db.Query(`
		SELECT u.id, u.username FROM users u
		JOIN item_assignees ia ON ia.user_id = u.id
		WHERE ia.item_id = ? ORDER BY u.username
	`, rec.Item.ID)
	if err != nil {
		return err
	}
	defer arows.Close()
	for arows.Next() {
		var id, username string
		if err := arows.Scan(&id, &username); err != nil {
			return err
		}
		rec.Item.AssigneeIDs = append(rec.Item.AssigneeIDs, id)
		rec.AssigneeNames = append(rec.AssigneeNames, username)
	}
	if err := arows.Err(); err != nil {
		return err
	}

	trows, err := r.db.Query(`
		SELECT t.id, t.name FROM tags t
		JOIN item_tags it ON it.tag_id = t.id
		WHERE it.item_id = ? ORDER BY t.name
	`, rec.Item.ID)
	if err != nil {
		return err
	}
	defer trows.Close()
	for trows.Next() {
		var id, name string
		if err := trows.Scan(&id, &name); err != nil {
			return err
		}
		rec.Item.TagIDs = append(rec.Item.TagIDs, id)
		rec.TagNames = append(rec.TagNames, name)
	}
	return trows.Err()
}

func (r *Repository) loadComments(rec *Record) error {
	rows, err := r.db.Query(`
		SELECT id, item_id, author_id, content, created_at, updated_at
		FROM comments WHERE item_id = ? ORDER BY created_at ASC, id ASC
	`, rec.Item.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		rec.Comments = append(rec.Comments, c)
	}
	return rows.Err()
}

// ActivityRow is one activity log line joined with actor and org scope
// for export.
type ActivityRow struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	UserID     string
	Username   string
	ItemID     string
	Details    string
	CreatedAt  int64
}

func (r *Repository) ListActivity(orgID string) ([]*ActivityRow, error) {
	rows, err := r.db.Query(`
		SELECT a.id, a.action, a.entity_type, a.entity_id, COALESCE(a.user_id, ''),
			COALESCE(u.username, ''), COALESCE(a.item_id, ''), COALESCE(a.details, ''), a.created_at
		FROM activity_logs a
		JOIN users u ON u.id = a.user_id
		WHERE u.organization_id = ?
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?
	`, orgID, maxExportRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ActivityRow
	for rows.Next() {
		row := &ActivityRow{}
		if err := rows.Scan(&row.ID, &row.Action, &row.EntityType, &row.EntityID, &row.UserID,
			&row.Username, &row.ItemID, &row.Details, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
