package notifications

import (
	"testing"
	"time"

	"taskhub/internal/platform/models"
)

func TestSweep_NotifiesOverdueOncePerDay(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "creator", "org1")
	seedUser(t, db, "assignee", "org1")

	creatorID := "creator"
	due := time.Now().Unix() - 3600
	seedItem(t, db, &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Late",
		Status:         models.StatusInProgress,
		DueDate:        &due,
		AssigneeIDs:    []string{"assignee"},
	})

	repo := NewRepository(db)
	svc := NewService(repo)

	result, err := svc.CheckAndNotifyOverdueItems()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.ItemsChecked != 1 || result.ItemsNotified != 1 || result.NotificationsSent != 2 {
		t.Errorf("Unexpected sweep result: %+v", result)
	}

	got := listByUser(t, db, repo, "assignee")
	if len(got) != 1 {
		t.Fatalf("Expected 1 notification for assignee, got %d", len(got))
	}
	if got[0].Type != models.NotifyItemOverdue || got[0].Priority != models.NotifyPriorityUrgent {
		t.Errorf("Expected urgent item_overdue, got %s/%s", got[0].Type, got[0].Priority)
	}
	if got[0].Title != "Item Overdue" {
		t.Errorf("Unexpected title %q", got[0].Title)
	}

	got = listByUser(t, db, repo, "creator")
	if len(got) != 1 || got[0].Title != "Your Item is Overdue" {
		t.Fatalf("Expected creator-path notification, got %d", len(got))
	}

	// Same UTC day, second run is a no-op.
	result, err = svc.CheckAndNotifyOverdueItems()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.ItemsNotified != 0 || result.NotificationsSent != 0 {
		t.Errorf("Second run should skip already-flagged items: %+v", result)
	}
	if got := listByUser(t, db, repo, "assignee"); len(got) != 1 {
		t.Errorf("Expected no new notifications, got %d", len(got))
	}
}

func TestSweep_DedupHoldsInAheadOfUTCZone(t *testing.T) {
	// The per-day dedup boundary is anchored to UTC. In a zone ahead of
	// UTC the local date can already be tomorrow, and deriving the
	// boundary from local Y/M/D would push it past the current time, so
	// no prior notice ever matches. Pick an offset that puts the local
	// clock past midnight no matter when the test runs.
	utcNow := time.Now().UTC()
	nextMidnight := time.Date(utcNow.Year(), utcNow.Month(), utcNow.Day()+1, 0, 0, 0, 0, time.UTC)
	offset := int(nextMidnight.Sub(utcNow).Seconds()) + 3600
	origLocal := time.Local
	time.Local = time.FixedZone("ahead", offset)
	defer func() { time.Local = origLocal }()

	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "u1", "org1")
	seedUser(t, db, "assignee", "org1")

	creatorID := "u1"
	due := time.Now().Unix() - 3600
	seedItem(t, db, &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Late",
		Status:         models.StatusTodo,
		DueDate:        &due,
		AssigneeIDs:    []string{"assignee"},
	})

	repo := NewRepository(db)
	svc := NewService(repo)

	if _, err := svc.CheckAndNotifyOverdueItems(); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	result, err := svc.CheckAndNotifyOverdueItems()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.NotificationsSent != 0 {
		t.Errorf("Second same-day run should send nothing, sent %d", result.NotificationsSent)
	}
	if got := listByUser(t, db, repo, "assignee"); len(got) != 1 {
		t.Errorf("Expected 1 notification for assignee, got %d", len(got))
	}
}

func TestSweep_SkipsDoneAndFutureItems(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "u1", "org1")

	creatorID := "u1"
	past := time.Now().Unix() - 3600
	future := time.Now().Unix() + 3600
	seedItem(t, db, &models.Item{
		ID: "done", OrganizationID: "org1", CreatedByID: &creatorID,
		Title: "Done", Status: models.StatusDone, DueDate: &past,
	})
	seedItem(t, db, &models.Item{
		ID: "archived", OrganizationID: "org1", CreatedByID: &creatorID,
		Title: "Archived", Status: models.StatusArchived, DueDate: &past,
	})
	seedItem(t, db, &models.Item{
		ID: "upcoming", OrganizationID: "org1", CreatedByID: &creatorID,
		Title: "Upcoming", Status: models.StatusTodo, DueDate: &future,
	})
	seedItem(t, db, &models.Item{
		ID: "undated", OrganizationID: "org1", CreatedByID: &creatorID,
		Title: "Undated", Status: models.StatusTodo,
	})

	repo := NewRepository(db)
	svc := NewService(repo)

	result, err := svc.CheckAndNotifyOverdueItems()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.ItemsChecked != 0 {
		t.Errorf("No item should qualify, checked %d", result.ItemsChecked)
	}
	if got := listByUser(t, db, repo, "u1"); len(got) != 0 {
		t.Errorf("Expected no notifications, got %d", len(got))
	}
}

func TestSweep_CreatorAlsoAssigneeNotDuplicated(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "u1", "org1")

	creatorID := "u1"
	due := time.Now().Unix() - 60
	seedItem(t, db, &models.Item{
		ID: "itm1", OrganizationID: "org1", CreatedByID: &creatorID,
		Title: "Mine", Status: models.StatusTodo, DueDate: &due,
		AssigneeIDs: []string{"u1"},
	})

	repo := NewRepository(db)
	svc := NewService(repo)

	result, err := svc.CheckAndNotifyOverdueItems()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.NotificationsSent != 1 {
		t.Errorf("Expected a single notification, got %d", result.NotificationsSent)
	}
	got := listByUser(t, db, repo, "u1")
	if len(got) != 1 || got[0].Title != "Item Overdue" {
		t.Errorf("Assignee path should win for the creator, got %d", len(got))
	}
}
