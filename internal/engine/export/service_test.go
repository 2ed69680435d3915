package export

import (
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskhub/internal/engine/analytics"
	apperrors "taskhub/internal/pkg/errors"
	"taskhub/internal/platform/database"
	"taskhub/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func newTestService(db *sql.DB) *Service {
	return NewService(NewRepository(db), analytics.NewService(db))
}

func seedBase(t *testing.T, db *sql.DB) {
	now := time.Now().Unix()
	stmts := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO organizations (id, name, slug, created_at, updated_at) VALUES ('org1', 'Acme', 'acme', ?, ?)`,
			[]interface{}{now, now}},
		{`INSERT INTO users (id, organization_id, email, username, password_hash, full_name, created_at)
			VALUES ('u1', 'org1', 'alice@example.com', 'alice', 'x', 'Alice Smith', ?)`,
			[]interface{}{now}},
		{`INSERT INTO users (id, organization_id, email, username, password_hash, full_name, created_at)
			VALUES ('u2', 'org1', 'bob@example.com', 'bob', 'x', 'Bob Jones', ?)`,
			[]interface{}{now}},
		{`INSERT INTO teams (id, organization_id, name, description, created_at) VALUES ('t1', 'org1', 'Core', 'core team', ?)`,
			[]interface{}{now}},
		{`INSERT INTO user_teams (user_id, team_id) VALUES ('u1', 't1')`, nil},
		{`INSERT INTO user_teams (user_id, team_id) VALUES ('u2', 't1')`, nil},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.query, s.args...); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}
	}
}

func seedItem(t *testing.T, db *sql.DB, id, status, priority string, teamID, createdBy string, assignees []string) {
	now := time.Now().Unix()
	var completedAt *int64
	if status == models.StatusDone {
		completedAt = &now
	}
	_, err := db.Exec(`
		INSERT INTO items (id, organization_id, team_id, created_by_id, title, status, priority, completed_at, created_at, updated_at)
		VALUES (?, 'org1', ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, nullStr(teamID), nullStr(createdBy), "Item "+id, status, priority, completedAt, now, now)
	if err != nil {
		t.Fatalf("Failed to seed item: %v", err)
	}
	for _, uid := range assignees {
		if _, err := db.Exec(`INSERT INTO item_assignees (item_id, user_id) VALUES (?, ?)`, id, uid); err != nil {
			t.Fatalf("Failed to seed assignee: %v", err)
		}
	}
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func TestItemsCSV_EmptyResultKeepsHeader(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)

	out, err := newTestService(db).ItemsCSV("org1", Filter{})
	if err != nil {
		t.Fatalf("ItemsCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected header only, got %d lines", len(lines))
	}
	cols := strings.Split(lines[0], ",")
	if len(cols) != 14 {
		t.Errorf("Expected 14 columns, got %d", len(cols))
	}
	if cols[0] != "ID" || cols[13] != "Actual Hours" {
		t.Errorf("Unexpected header: %v", cols)
	}
}

func TestItemsCSV_RowContent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)
	seedItem(t, db, "itm1", models.StatusTodo, models.PriorityHigh, "t1", "u1", []string{"u1", "u2"})

	out, err := newTestService(db).ItemsCSV("org1", Filter{})
	if err != nil {
		t.Fatalf("ItemsCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d lines", len(lines))
	}
	row := lines[1]
	if !strings.Contains(row, "itm1") || !strings.Contains(row, "alice") {
		t.Errorf("Row missing id or creator name: %q", row)
	}
	// Multiple names collapse into one quoted cell.
	if !strings.Contains(row, `"alice, bob"`) {
		t.Errorf("Expected joined assignee names, got %q", row)
	}
}

func TestItemsCSV_StatusFilter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)
	seedItem(t, db, "itm1", models.StatusTodo, models.PriorityMedium, "", "u1", nil)
	seedItem(t, db, "itm2", models.StatusDone, models.PriorityMedium, "", "u1", nil)

	out, err := newTestService(db).ItemsCSV("org1", Filter{Status: models.StatusDone})
	if err != nil {
		t.Fatalf("ItemsCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "itm2") {
		t.Errorf("Status filter failed: %v", lines)
	}
}

func TestItemsJSON_Envelope(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)
	seedItem(t, db, "itm1", models.StatusTodo, models.PriorityMedium, "", "u1", []string{"u2"})
	now := time.Now().Unix()
	if _, err := db.Exec(`
		INSERT INTO comments (id, item_id, author_id, content, created_at, updated_at)
		VALUES ('c1', 'itm1', 'u2', 'looks good', ?, ?)
	`, now, now); err != nil {
		t.Fatalf("Failed to seed comment: %v", err)
	}

	out, err := newTestService(db).ItemsJSON("org1", Filter{}, true)
	if err != nil {
		t.Fatalf("ItemsJSON failed: %v", err)
	}

	var env struct {
		ExportDate     string `json:"export_date"`
		OrganizationID string `json:"organization_id"`
		TotalItems     int    `json:"total_items"`
		Items          []struct {
			ID            string            `json:"id"`
			AssigneeNames []string          `json:"assignee_names"`
			Comments      []*models.Comment `json:"comments"`
		} `json:"items"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if env.OrganizationID != "org1" || env.TotalItems != 1 {
		t.Errorf("Unexpected envelope: %+v", env)
	}
	if len(env.Items) != 1 || env.Items[0].ID != "itm1" {
		t.Fatalf("Unexpected items: %+v", env.Items)
	}
	if len(env.Items[0].Comments) != 1 || env.Items[0].Comments[0].Content != "looks good" {
		t.Errorf("Expected embedded comments, got %+v", env.Items[0].Comments)
	}
	if _, err := time.Parse(time.RFC3339, env.ExportDate); err != nil {
		t.Errorf("export_date should be RFC3339: %v", err)
	}
}

func TestTeamReport(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)
	seedItem(t, db, "itm1", models.StatusDone, models.PriorityMedium, "t1", "u1", []string{"u1"})
	seedItem(t, db, "itm2", models.StatusInProgress, models.PriorityHigh, "t1", "u1", []string{"u1", "u2"})
	seedItem(t, db, "itm3", models.StatusTodo, models.PriorityMedium, "", "u1", nil)

	svc := newTestService(db)
	report, err := svc.TeamReport("org1", "t1")
	if err != nil {
		t.Fatalf("TeamReport failed: %v", err)
	}

	team := report["team"].(map[string]interface{})
	if team["name"] != "Core" || team["member_count"] != 2 {
		t.Errorf("Unexpected team block: %v", team)
	}
	summary := report["summary"].(map[string]interface{})
	if summary["total_items"] != 2 || summary["completed_items"] != 1 {
		t.Errorf("Items outside the team leaked into summary: %v", summary)
	}
	if summary["completion_rate"] != 50.0 {
		t.Errorf("Expected completion_rate 50, got %v", summary["completion_rate"])
	}
	workload := report["member_workload"].(map[string]map[string]int)
	alice := workload["Alice Smith"]
	if alice == nil || alice["assigned"] != 2 || alice["completed"] != 1 {
		t.Errorf("Unexpected workload for Alice: %v", alice)
	}

	if _, err := svc.TeamReport("org1", "missing"); err != apperrors.ErrNotFound {
		t.Errorf("Unknown team should be NotFound, got %v", err)
	}
	if _, err := svc.TeamReport("other-org", "t1"); err != apperrors.ErrNotFound {
		t.Errorf("Cross-tenant team should be NotFound, got %v", err)
	}
}

func TestUserReport(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)
	seedItem(t, db, "itm1", models.StatusDone, models.PriorityMedium, "", "u2", []string{"u1"})
	seedItem(t, db, "itm2", models.StatusTodo, models.PriorityHigh, "", "u1", []string{"u1"})

	svc := newTestService(db)
	report, err := svc.UserReport("org1", "u1")
	if err != nil {
		t.Fatalf("UserReport failed: %v", err)
	}

	assigned := report["assigned_items"].(map[string]interface{})
	if assigned["total"] != 2 || assigned["completed"] != 1 || assigned["completion_rate"] != 50.0 {
		t.Errorf("Unexpected assigned block: %v", assigned)
	}
	created := report["created_items"].(map[string]interface{})
	if created["total"] != 1 {
		t.Errorf("Expected 1 created item, got %v", created["total"])
	}
	hours := report["hours"].(map[string]interface{})
	if hours["variance"] != nil {
		t.Errorf("Variance should be nil without actual hours, got %v", hours["variance"])
	}

	if _, err := svc.UserReport("org1", "ghost"); err != apperrors.ErrNotFound {
		t.Errorf("Unknown user should be NotFound, got %v", err)
	}
}

func TestOrgSummary(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)
	seedItem(t, db, "itm1", models.StatusDone, models.PriorityMedium, "t1", "u1", []string{"u1"})
	seedItem(t, db, "itm2", models.StatusTodo, models.PriorityLow, "", "u1", []string{"u2"})

	svc := newTestService(db)
	summary, err := svc.OrgSummary("org1")
	if err != nil {
		t.Fatalf("OrgSummary failed: %v", err)
	}

	overview := summary["overview"].(map[string]interface{})
	if overview["total_teams"] != 1 || overview["total_users"] != 2 || overview["active_users_30d"] != 2 {
		t.Errorf("Unexpected overview: %v", overview)
	}
	items := summary["items"].(*analytics.ItemAnalytics)
	if items.TotalItems != 2 || items.ByStatus[models.StatusDone] != 1 {
		t.Errorf("Unexpected item analytics: %+v", items)
	}
	contributors := summary["top_contributors"].([]map[string]interface{})
	if len(contributors) != 1 || contributors[0]["name"] != "Alice Smith" || contributors[0]["items_created"] != 2 {
		t.Errorf("Unexpected contributors: %v", contributors)
	}

	if _, err := svc.OrgSummary("nope"); err != apperrors.ErrNotFound {
		t.Errorf("Unknown org should be NotFound, got %v", err)
	}
}

func TestActivityCSV(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedBase(t, db)
	now := time.Now().Unix()
	if _, err := db.Exec(`
		INSERT INTO activity_logs (id, action, entity_type, entity_id, user_id, created_at)
		VALUES ('act1', 'created', 'item', 'itm1', 'u1', ?)
	`, now); err != nil {
		t.Fatalf("Failed to seed activity: %v", err)
	}

	out, err := newTestService(db).ActivityCSV("org1")
	if err != nil {
		t.Fatalf("ActivityCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "act1") || !strings.Contains(lines[1], "alice") {
		t.Errorf("Unexpected activity row: %q", lines[1])
	}
}
