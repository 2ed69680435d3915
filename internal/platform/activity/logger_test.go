package activity

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskhub/internal/platform/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *sql.DB, id, orgID string) {
	t.Helper()
	now := time.Now().Unix()
	if _, err := db.Exec(`INSERT INTO organizations (id, name, slug, subscription_tier, max_users, max_items, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 'free', 5, 100, 1, ?, ?)`, orgID, orgID, orgID, now, now); err != nil {
		t.Fatalf("Failed to seed org: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO users (id, organization_id, email, username, password_hash, full_name, role, is_active, created_at)
		VALUES (?, ?, ?, ?, 'x', '', 'member', 1, ?)`, id, orgID, id+"@test", id, now); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
}

func TestListByOrgDecodesDetails(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedUser(t, db, "u1", "org1")

	logger := NewLogger(db)
	userID := "u1"
	logger.Log(&Entry{
		Action:     "updated",
		EntityType: "item",
		EntityID:   "itm1",
		UserID:     &userID,
		Details:    map[string]interface{}{"status": map[string]interface{}{"from": "todo", "to": "done"}},
	})

	entries, err := logger.ListByOrg("org1", "", 10)
	if err != nil {
		t.Fatalf("ListByOrg failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	change, ok := entries[0].Details["status"].(map[string]interface{})
	if !ok || change["from"] != "todo" || change["to"] != "done" {
		t.Errorf("Unexpected details: %+v", entries[0].Details)
	}
}

func TestListByOrgSurvivesCorruptDetails(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedUser(t, db, "u1", "org1")

	now := time.Now().Unix()
	if _, err := db.Exec(`INSERT INTO activity_logs (id, action, entity_type, entity_id, details, user_id, created_at)
		VALUES ('act_bad', 'updated', 'item', 'itm1', '{not json', 'u1', ?)`, now); err != nil {
		t.Fatalf("Failed to seed row: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO activity_logs (id, action, entity_type, entity_id, details, user_id, created_at)
		VALUES ('act_ok', 'created', 'item', 'itm2', '{"a":1}', 'u1', ?)`, now); err != nil {
		t.Fatalf("Failed to seed row: %v", err)
	}

	entries, err := NewLogger(db).ListByOrg("org1", "", 10)
	if err != nil {
		t.Fatalf("ListByOrg failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected both rows back, got %d", len(entries))
	}
	for _, e := range entries {
		switch e.ID {
		case "act_bad":
			if e.Details != nil {
				t.Errorf("Corrupt details should stay nil, got %+v", e.Details)
			}
		case "act_ok":
			if e.Details == nil || e.Details["a"] != float64(1) {
				t.Errorf("Valid details should decode, got %+v", e.Details)
			}
		}
	}
}
