package analytics

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

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
	now := time.Now().Unix()
	if _, err := db.Exec(`
		INSERT INTO organizations (id, name, slug, created_at, updated_at) VALUES ('org1', 'Acme', 'acme', ?, ?)
	`, now, now); err != nil {
		t.Fatalf("Failed to seed org: %v", err)
	}
	return db
}

func seedItem(t *testing.T, db *sql.DB, id, status string, dueDate, completedAt *int64, actualHours *int) {
	now := time.Now().Unix()
	_, err := db.Exec(`
		INSERT INTO items (id, organization_id, title, status, priority, due_date, completed_at, actual_hours, created_at, updated_at)
		VALUES (?, 'org1', ?, ?, 'medium', ?, ?, ?, ?, ?)
	`, id, "Item "+id, status, dueDate, completedAt, actualHours, now, now)
	if err != nil {
		t.Fatalf("Failed to seed item: %v", err)
	}
}

func TestItemAnalytics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	now := time.Now().Unix()
	past := now - 3600
	longAgo := now - 10*86400
	recent := now - 86400
	h4, h6 := 4, 6

	seedItem(t, db, "a", models.StatusTodo, &past, nil, nil)
	seedItem(t, db, "b", models.StatusInProgress, nil, nil, &h4)
	seedItem(t, db, "c", models.StatusDone, &past, &recent, &h6)
	seedItem(t, db, "d", models.StatusDone, nil, &longAgo, nil)

	stats, err := NewService(db).ItemAnalytics("org1")
	if err != nil {
		t.Fatalf("ItemAnalytics failed: %v", err)
	}

	if stats.TotalItems != 4 {
		t.Errorf("Expected 4 items, got %d", stats.TotalItems)
	}
	if stats.ByStatus[models.StatusDone] != 2 || stats.ByStatus[models.StatusTodo] != 1 {
		t.Errorf("Unexpected status counts: %v", stats.ByStatus)
	}
	if stats.ByPriority[models.PriorityMedium] != 4 {
		t.Errorf("Unexpected priority counts: %v", stats.ByPriority)
	}
	// "c" is past due but done; only "a" counts.
	if stats.OverdueCount != 1 {
		t.Errorf("Expected 1 overdue item, got %d", stats.OverdueCount)
	}
	if stats.CompletedLast7Days != 1 {
		t.Errorf("Expected 1 completion in the last 7 days, got %d", stats.CompletedLast7Days)
	}
	if stats.AvgActualHours == nil || *stats.AvgActualHours != 5.0 {
		t.Errorf("Expected avg actual hours 5, got %v", stats.AvgActualHours)
	}
}

func TestItemAnalytics_EmptyOrg(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	stats, err := NewService(db).ItemAnalytics("org1")
	if err != nil {
		t.Fatalf("ItemAnalytics failed: %v", err)
	}
	if stats.TotalItems != 0 || stats.AvgActualHours != nil {
		t.Errorf("Expected zero-value rollup, got %+v", stats)
	}
}

func TestUsageAnalytics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	now := time.Now().Unix()
	rows := []struct {
		id       string
		endpoint string
		status   int
		ms       int
		at       int64
	}{
		{"l1", "/api/v1/items", 200, 10, now},
		{"l2", "/api/v1/items", 200, 20, now},
		{"l3", "/api/v1/teams", 500, 30, now},
		{"l4", "/api/v1/items", 200, 999, now - 7200},
	}
	for _, r := range rows {
		if _, err := db.Exec(`
			INSERT INTO usage_logs (id, organization_id, endpoint, method, status_code, response_time_ms, created_at)
			VALUES (?, 'org1', ?, 'GET', ?, ?, ?)
		`, r.id, r.endpoint, r.status, r.ms, r.at); err != nil {
			t.Fatalf("Failed to seed usage log: %v", err)
		}
	}

	stats, err := NewService(db).UsageAnalytics("org1", now-3600)
	if err != nil {
		t.Fatalf("UsageAnalytics failed: %v", err)
	}
	if stats.TotalRequests != 3 {
		t.Errorf("Expected 3 requests in the window, got %d", stats.TotalRequests)
	}
	if stats.ByEndpoint["/api/v1/items"] != 2 || stats.ByEndpoint["/api/v1/teams"] != 1 {
		t.Errorf("Unexpected endpoint counts: %v", stats.ByEndpoint)
	}
	if stats.AvgResponseTimeMS != 20.0 {
		t.Errorf("Expected avg 20ms, got %v", stats.AvgResponseTimeMS)
	}
	want := 1.0 / 3.0
	if stats.ErrorRate != want {
		t.Errorf("Expected error rate %v, got %v", want, stats.ErrorRate)
	}
}

func TestUsageAnalytics_NoTraffic(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	stats, err := NewService(db).UsageAnalytics("org1", time.Now().Unix()-3600)
	if err != nil {
		t.Fatalf("UsageAnalytics failed: %v", err)
	}
	if stats.TotalRequests != 0 || stats.ErrorRate != 0 || stats.AvgResponseTimeMS != 0 {
		t.Errorf("Expected zero-value rollup, got %+v", stats)
	}
}
