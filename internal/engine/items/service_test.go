package items

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "taskhub/internal/pkg/errors"
	"taskhub/internal/platform/activity"
	"taskhub/internal/platform/database"
	"taskhub/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	// Every connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedOrg(t *testing.T, db *sql.DB, id, slug string) {
	now := time.Now().Unix()
	_, err := db.Exec(`
		INSERT INTO organizations (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`, id, slug, slug, now, now)
	if err != nil {
		t.Fatalf("Failed to seed org: %v", err)
	}
}

func seedUser(t *testing.T, db *sql.DB, id, orgID, role string) *models.User {
	now := time.Now().Unix()
	_, err := db.Exec(`
		INSERT INTO users (id, organization_id, email, username, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, 'x', ?, ?)
	`, id, orgID, id+"@example.com", id, role, now)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return &models.User{ID: id, OrganizationID: orgID, Username: id, Role: role, IsActive: true}
}

func newTestService(db *sql.DB) *Service {
	return NewService(NewRepository(db), activity.NewLogger(db), nil, nil)
}

func countActivity(t *testing.T, db *sql.DB, action string) int {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM activity_logs WHERE action = ?`, action).Scan(&n); err != nil {
		t.Fatalf("Failed to count activity: %v", err)
	}
	return n
}

func TestService_CreateResolvesAssigneesLeniently(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	creator := seedUser(t, db, "u1", "org1", models.RoleMember)
	seedUser(t, db, "u2", "org1", models.RoleMember)

	svc := newTestService(db)
	item, err := svc.Create("org1", creator, CreateInput{
		Title:       "Fix bug",
		AssigneeIDs: []string{"u2", "usr_does_not_exist"},
		TagIDs:      []string{"tag_does_not_exist"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(item.AssigneeIDs) != 1 || item.AssigneeIDs[0] != "u2" {
		t.Errorf("Expected assignees [u2], got %v", item.AssigneeIDs)
	}
	if len(item.TagIDs) != 0 {
		t.Errorf("Expected no tags, got %v", item.TagIDs)
	}
	if item.Status != models.StatusTodo || item.Priority != models.PriorityMedium {
		t.Errorf("Expected default status/priority, got %s/%s", item.Status, item.Priority)
	}
	if got := countActivity(t, db, "created"); got != 1 {
		t.Errorf("Expected 1 created activity row, got %d", got)
	}
}

func TestService_CreateRejectsForeignAssignees(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	seedOrg(t, db, "org2", "globex")
	creator := seedUser(t, db, "u1", "org1", models.RoleMember)
	seedUser(t, db, "outsider", "org2", models.RoleMember)

	svc := newTestService(db)
	item, err := svc.Create("org1", creator, CreateInput{
		Title:       "Scoped",
		AssigneeIDs: []string{"outsider"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(item.AssigneeIDs) != 0 {
		t.Errorf("Expected foreign assignee to be dropped, got %v", item.AssigneeIDs)
	}
}

func TestService_CompletedAtStampedOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	user := seedUser(t, db, "u1", "org1", models.RoleMember)

	svc := newTestService(db)
	item, err := svc.Create("org1", user, CreateInput{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if item.CompletedAt != nil {
		t.Fatal("CompletedAt should be nil before the first DONE transition")
	}

	done := models.StatusDone
	item, err = svc.Update(item.ID, "org1", user, Patch{Status: &done})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if item.CompletedAt == nil {
		t.Fatal("CompletedAt should be stamped on first DONE transition")
	}
	stamped := *item.CompletedAt

	inProgress := models.StatusInProgress
	item, err = svc.Update(item.ID, "org1", user, Patch{Status: &inProgress})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if item.CompletedAt == nil || *item.CompletedAt != stamped {
		t.Error("CompletedAt should survive a transition away from DONE")
	}

	item, err = svc.Update(item.ID, "org1", user, Patch{Status: &done})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if item.CompletedAt == nil || *item.CompletedAt != stamped {
		t.Error("CompletedAt should not be restamped on a second DONE transition")
	}
}

func TestService_EmptyPatchWritesNoActivity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	user := seedUser(t, db, "u1", "org1", models.RoleMember)

	svc := newTestService(db)
	item, err := svc.Create("org1", user, CreateInput{Title: "Stable"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Update(item.ID, "org1", user, Patch{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := countActivity(t, db, "updated"); got != 0 {
		t.Errorf("Empty patch should write zero activity rows, got %d", got)
	}

	// A no-op value is also not a change.
	same := "Stable"
	if _, err := svc.Update(item.ID, "org1", user, Patch{Title: &same}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := countActivity(t, db, "updated"); got != 0 {
		t.Errorf("Unchanged field should write zero activity rows, got %d", got)
	}
}

func TestService_UpdateRecordsFieldChanges(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	user := seedUser(t, db, "u1", "org1", models.RoleMember)

	svc := newTestService(db)
	item, err := svc.Create("org1", user, CreateInput{Title: "Fix bug"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	done := models.StatusDone
	hours := 5
	if _, err := svc.Update(item.ID, "org1", user, Patch{Status: &done, ActualHours: &hours}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var details string
	err = db.QueryRow(`SELECT details FROM activity_logs WHERE action = 'updated'`).Scan(&details)
	if err != nil {
		t.Fatalf("Expected one updated activity row: %v", err)
	}
	var changes map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(details), &changes); err != nil {
		t.Fatalf("Details should be JSON: %v", err)
	}
	status, ok := changes["status"]
	if !ok {
		t.Fatalf("Expected status change in details, got %v", changes)
	}
	if status["from"] != "todo" || status["to"] != "done" {
		t.Errorf("Expected status {from: todo, to: done}, got %v", status)
	}
	if _, ok := changes["actual_hours"]; !ok {
		t.Errorf("Expected actual_hours change in details, got %v", changes)
	}
}

func TestService_AssigneeReplaceNotMerge(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	user := seedUser(t, db, "u1", "org1", models.RoleMember)
	seedUser(t, db, "u2", "org1", models.RoleMember)
	seedUser(t, db, "u3", "org1", models.RoleMember)

	svc := newTestService(db)
	item, err := svc.Create("org1", user, CreateInput{Title: "Handoff", AssigneeIDs: []string{"u2"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	replacement := []string{"u3"}
	item, err = svc.Update(item.ID, "org1", user, Patch{AssigneeIDs: &replacement})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(item.AssigneeIDs) != 1 || item.AssigneeIDs[0] != "u3" {
		t.Errorf("Expected assignees replaced with [u3], got %v", item.AssigneeIDs)
	}
}

func TestService_TenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	seedOrg(t, db, "org2", "globex")
	user := seedUser(t, db, "u1", "org1", models.RoleMember)

	svc := newTestService(db)
	item, err := svc.Create("org1", user, CreateInput{Title: "Private"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(item.ID, "org2"); err != apperrors.ErrNotFound {
		t.Errorf("Cross-tenant Get should be NotFound, got %v", err)
	}
	if _, err := svc.Update(item.ID, "org2", user, Patch{}); err != apperrors.ErrNotFound {
		t.Errorf("Cross-tenant Update should be NotFound, got %v", err)
	}
	if err := svc.Delete(item.ID, "org2", user); err != apperrors.ErrNotFound {
		t.Errorf("Cross-tenant Delete should be NotFound, got %v", err)
	}

	list, err := svc.List("org2", Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Cross-tenant List should be empty, got %d items", len(list))
	}
}

func TestService_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	user := seedUser(t, db, "u1", "org1", models.RoleMember)

	svc := newTestService(db)
	parent, err := svc.Create("org1", user, CreateInput{Title: "Parent"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	child, err := svc.Create("org1", user, CreateInput{Title: "Child", ParentItemID: &parent.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	now := time.Now().Unix()
	if _, err := db.Exec(`
		INSERT INTO comments (id, item_id, author_id, content, created_at, updated_at)
		VALUES ('c1', ?, 'u1', 'hello', ?, ?)
	`, parent.ID, now, now); err != nil {
		t.Fatalf("Failed to seed comment: %v", err)
	}

	if err := svc.Delete(parent.ID, "org1", user); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var comments int
	if err := db.QueryRow(`SELECT COUNT(*) FROM comments WHERE item_id = ?`, parent.ID).Scan(&comments); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if comments != 0 {
		t.Errorf("Expected comments removed with item, got %d", comments)
	}

	got, err := svc.Get(child.ID, "org1")
	if err != nil {
		t.Fatalf("Subtask should survive parent deletion: %v", err)
	}
	if got.ParentItemID != nil {
		t.Errorf("Expected subtask parent reference cleared, got %v", *got.ParentItemID)
	}
}

func TestRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1", "acme")
	user := seedUser(t, db, "u1", "org1", models.RoleMember)

	svc := newTestService(db)
	high := models.PriorityHigh
	if _, err := svc.Create("org1", user, CreateInput{Title: "Fix login bug", Priority: high}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create("org1", user, CreateInput{Title: "Write docs", Description: "API reference"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := svc.List("org1", Filter{Search: "LOGIN"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Fix login bug" {
		t.Errorf("Case-insensitive title search failed, got %d items", len(list))
	}

	list, err = svc.List("org1", Filter{Search: "reference"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Write docs" {
		t.Errorf("Description search failed, got %d items", len(list))
	}

	list, err = svc.List("org1", Filter{Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Priority filter failed, got %d items", len(list))
	}
}
