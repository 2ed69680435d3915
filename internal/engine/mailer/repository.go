package mailer

import (
	"database/sql"

	"taskhub/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ItemBatch is an item joined with the users a batch mailing targets.
type ItemBatch struct {
	Item      *models.Item
	Assignees []*models.User
}

// ListDueBetween returns open items whose due date falls inside the
// window, with assignee users loaded.
func (r *Repository) ListDueBetween(from, to int64) ([]*ItemBatch, error) {
	return r.listWindow(`
		SELECT id, organization_id, created_by_id, title, status, priority, due_date
		FROM items
		WHERE due_date IS NOT NULL AND due_date >= ? AND due_date <= ? AND status NOT IN (?, ?)
	`, from, to, models.StatusDone, models.StatusArchived)
}

// ListOverdue returns open items past their due date, with assignee
// users loaded.
func (r *Repository) ListOverdue(now int64) ([]*ItemBatch, error) {
	return r.listWindow(`
		SELECT id, organization_id, created_by_id, title, status, priority, due_date
		FROM items
		WHERE due_date IS NOT NULL AND due_date < ? AND status NOT IN (?, ?)
	`, now, models.StatusDone, models.StatusArchived)
}

func (r *Repository) listWindow(query string, args ...interface{}) ([]*ItemBatch, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*ItemBatch
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.OrganizationID, &item.CreatedByID, &item.Title,
			&item.Status, &item.Priority, &item.DueDate); err != nil {
			return nil, err
		}
		batches = append(batches, &ItemBatch{Item: item})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range batches {
		assignees, err := r.listAssignees(b.Item.ID)
		if err != nil {
			return nil, err
		}
		b.Assignees = assignees
		for _, u := range assignees {
			b.Item.AssigneeIDs = append(b.Item.AssigneeIDs, u.ID)
		}
	}
	return batches, nil
}

func (r *Repository) listAssignees(itemID string) ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT u.id, u.email, u.username, u.full_name
		FROM users u
		JOIN item_assignees ia ON ia.user_id = u.id
		WHERE ia.item_id = ? AND u.is_active = 1
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FullName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
