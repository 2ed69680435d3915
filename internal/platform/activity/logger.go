package activity

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxListRows caps the activity read API regardless of the caller's limit.
const maxListRows = 500

type Entry struct {
	ID         string                 `json:"id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	UserID     *string                `json:"user_id,omitempty"`
	ItemID     *string                `json:"item_id,omitempty"`
	CreatedAt  int64                  `json:"created_at"`
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// LogTx writes the entry inside the caller's transaction so the mutation
// and its audit row commit together.
func (l *Logger) LogTx(tx *sql.Tx, entry *Entry) error {
	return insert(tx, entry)
}

// Log writes an entry outside any transaction, best-effort: failures are
// logged and swallowed.
func (l *Logger) Log(entry *Entry) {
	if err := insert(l.db, entry); err != nil {
		log.Error().Err(err).Str("action", entry.Action).Str("entity_type", entry.EntityType).
			Msg("failed to write activity log")
	}
}

func insert(ex execer, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "act_" + uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	var details *string
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		s := string(raw)
		details = &s
	}

	_, err := ex.Exec(`
		INSERT INTO activity_logs (id, action, entity_type, entity_id, details, user_id, item_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Action, entry.EntityType, entry.EntityID, details, entry.UserID, entry.ItemID, entry.CreatedAt)
	return err
}

// ListByOrg returns activity rows for the organization, newest first.
// Scoping goes through the acting user's organization; itemID is an
// optional filter.
func (l *Logger) ListByOrg(orgID, itemID string, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > maxListRows {
		limit = maxListRows
	}

	query := `
		SELECT a.id, a.action, a.entity_type, a.entity_id, a.details, a.user_id, a.item_id, a.created_at
		FROM activity_logs a
		JOIN users u ON u.id = a.user_id
		WHERE u.organization_id = ?
	`
	args := []interface{}{orgID}
	if itemID != "" {
		query += ` AND a.item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY a.created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		var details sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.EntityType, &entry.EntityID,
			&details, &entry.UserID, &entry.ItemID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				log.Warn().Err(err).Str("activity_id", entry.ID).Msg("failed to decode activity details")
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
