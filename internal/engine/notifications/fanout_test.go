package notifications

import (
	"testing"

	"taskhub/internal/platform/models"
)

func TestFanout_ItemCreatedSkipsCreator(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	creator := seedUser(t, db, "u1", "org1")
	seedUser(t, db, "u2", "org1")
	seedUser(t, db, "u3", "org1")

	creatorID := creator.ID
	item := &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Hot fix",
		Priority:       models.PriorityUrgent,
		AssigneeIDs:    []string{"u1", "u2", "u3"},
	}
	seedItem(t, db, item)

	repo := NewRepository(db)
	svc := NewService(repo)
	svc.ItemCreated(item, creator)

	if got := listByUser(t, db, repo, "u1"); len(got) != 0 {
		t.Errorf("Creator should not be notified, got %d", len(got))
	}
	for _, uid := range []string{"u2", "u3"} {
		got := listByUser(t, db, repo, uid)
		if len(got) != 1 {
			t.Fatalf("Expected 1 notification for %s, got %d", uid, len(got))
		}
		n := got[0]
		if n.Type != models.NotifyItemAssigned {
			t.Errorf("Expected type item_assigned, got %s", n.Type)
		}
		if n.Priority != models.NotifyPriorityHigh {
			t.Errorf("Urgent item should notify at high priority, got %s", n.Priority)
		}
		if n.Message != "u1 assigned you to: Hot fix" {
			t.Errorf("Unexpected message %q", n.Message)
		}
		if n.ActionURL != "/items/itm1" {
			t.Errorf("Unexpected action URL %q", n.ActionURL)
		}
	}
}

func TestFanout_ItemUpdatedNotifiesCreatorOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "creator", "org1")
	updater := seedUser(t, db, "updater", "org1")
	seedUser(t, db, "assignee", "org1")

	creatorID := "creator"
	item := &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Report",
		AssigneeIDs:    []string{"assignee", "updater"},
	}
	seedItem(t, db, item)

	repo := NewRepository(db)
	svc := NewService(repo)
	changes := map[string]interface{}{
		"status":   map[string]interface{}{"from": "todo", "to": "in_progress"},
		"due_date": map[string]interface{}{"from": "", "to": "1700000000"},
	}
	svc.ItemUpdated(item, updater, changes)

	if got := listByUser(t, db, repo, "updater"); len(got) != 0 {
		t.Errorf("Updater should not be notified, got %d", len(got))
	}

	got := listByUser(t, db, repo, "assignee")
	if len(got) != 1 {
		t.Fatalf("Expected 1 notification for assignee, got %d", len(got))
	}
	// Field names come out sorted.
	if got[0].Message != "updater updated Report (due_date, status)" {
		t.Errorf("Unexpected message %q", got[0].Message)
	}
	if got[0].Metadata == "" {
		t.Error("Expected change metadata on the notification")
	}

	got = listByUser(t, db, repo, "creator")
	if len(got) != 1 {
		t.Fatalf("Expected 1 notification for creator, got %d", len(got))
	}
	if got[0].Title != "Your Item Was Updated" {
		t.Errorf("Unexpected title %q", got[0].Title)
	}
}

func TestFanout_ItemUpdatedAssigneeCreatorNotDuplicated(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "creator", "org1")
	updater := seedUser(t, db, "updater", "org1")

	creatorID := "creator"
	item := &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Report",
		AssigneeIDs:    []string{"creator"},
	}
	seedItem(t, db, item)

	repo := NewRepository(db)
	svc := NewService(repo)
	svc.ItemUpdated(item, updater, map[string]interface{}{"title": map[string]interface{}{"from": "a", "to": "b"}})

	got := listByUser(t, db, repo, "creator")
	if len(got) != 1 {
		t.Errorf("Assignee-creator should get exactly one notification, got %d", len(got))
	}
	if len(got) == 1 && got[0].Title != "Item Updated" {
		t.Errorf("Assignee path should win, got title %q", got[0].Title)
	}
}

func TestFanout_ItemCompleted(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "creator", "org1")
	completer := seedUser(t, db, "completer", "org1")
	seedUser(t, db, "assignee", "org1")

	creatorID := "creator"
	item := &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Ship",
		AssigneeIDs:    []string{"completer", "assignee"},
	}
	seedItem(t, db, item)

	repo := NewRepository(db)
	svc := NewService(repo)
	svc.ItemCompleted(item, completer)

	if got := listByUser(t, db, repo, "completer"); len(got) != 0 {
		t.Errorf("Completer should not be notified, got %d", len(got))
	}
	got := listByUser(t, db, repo, "creator")
	if len(got) != 1 || got[0].Type != models.NotifyItemCompleted {
		t.Fatalf("Expected item_completed for creator, got %d", len(got))
	}
	if got[0].Message != "completer completed: Ship" {
		t.Errorf("Unexpected message %q", got[0].Message)
	}
	if got = listByUser(t, db, repo, "assignee"); len(got) != 1 {
		t.Errorf("Expected 1 notification for other assignee, got %d", len(got))
	}
}

func TestFanout_ItemCompletedByCreator(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	creator := seedUser(t, db, "creator", "org1")
	seedUser(t, db, "assignee", "org1")

	creatorID := creator.ID
	item := &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Ship",
		AssigneeIDs:    []string{"assignee"},
	}
	seedItem(t, db, item)

	repo := NewRepository(db)
	svc := NewService(repo)
	svc.ItemCompleted(item, creator)

	if got := listByUser(t, db, repo, "creator"); len(got) != 0 {
		t.Errorf("Creator completing their own item should not be notified, got %d", len(got))
	}
	if got := listByUser(t, db, repo, "assignee"); len(got) != 1 {
		t.Errorf("Expected 1 notification for assignee, got %d", len(got))
	}
}

func TestFanout_CommentAddedDedupsCreator(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "creator", "org1")
	author := seedUser(t, db, "author", "org1")

	creatorID := "creator"
	item := &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Thread",
		AssigneeIDs:    []string{"creator", "author"},
	}
	seedItem(t, db, item)
	comment := &models.Comment{ID: "cmt1", ItemID: "itm1", Content: "hello"}

	repo := NewRepository(db)
	svc := NewService(repo)
	svc.CommentAdded(comment, item, author)

	if got := listByUser(t, db, repo, "author"); len(got) != 0 {
		t.Errorf("Comment author should not be notified, got %d", len(got))
	}
	got := listByUser(t, db, repo, "creator")
	if len(got) != 1 {
		t.Fatalf("Assignee-creator should get exactly one notification, got %d", len(got))
	}
	n := got[0]
	if n.Title != "New Comment" {
		t.Errorf("Assignee path should win, got title %q", n.Title)
	}
	if n.Type != models.NotifyCommentAdded {
		t.Errorf("Expected type comment_added, got %s", n.Type)
	}
	if n.ActionURL != "/items/itm1#comment-cmt1" {
		t.Errorf("Unexpected action URL %q", n.ActionURL)
	}
	if n.CommentID == nil || *n.CommentID != "cmt1" {
		t.Error("Expected comment id on the notification")
	}
}

func TestFanout_CommentAddedNotifiesNonAssigneeCreator(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedOrg(t, db, "org1")
	seedUser(t, db, "creator", "org1")
	author := seedUser(t, db, "author", "org1")

	creatorID := "creator"
	item := &models.Item{
		ID:             "itm1",
		OrganizationID: "org1",
		CreatedByID:    &creatorID,
		Title:          "Thread",
	}
	seedItem(t, db, item)

	repo := NewRepository(db)
	svc := NewService(repo)
	svc.CommentAdded(&models.Comment{ID: "cmt1", ItemID: "itm1", Content: "hi"}, item, author)

	got := listByUser(t, db, repo, "creator")
	if len(got) != 1 || got[0].Title != "New Comment on Your Item" {
		t.Fatalf("Expected creator-path notification, got %d", len(got))
	}
}
