package comments

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

func (r *Repository) Begin() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *Repository) CreateTx(tx *sql.Tx, comment *models.Comment) error {
	_, err := tx.Exec(`
		INSERT INTO comments (id, item_id, author_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, comment.ID, comment.ItemID, comment.AuthorID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	return err
}

func (r *Repository) ListByItem(itemID string) ([]*models.Comment, error) {
	rows, err := r.db.Query(`
		SELECT id, item_id, author_id, content, created_at, updated_at
		FROM comments WHERE item_id = ?
		ORDER BY created_at DESC, id DESC
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
