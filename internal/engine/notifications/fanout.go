package notifications

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"taskhub/internal/platform/models"
)

// Fan-out is best-effort: item mutations have already committed by the
// time these run, so a failed insert is logged and skipped rather than
// surfaced to the caller.

func (s *Service) deliver(n *models.Notification) {
	if err := s.repo.Create(n); err != nil {
		log.Error().Err(err).Str("user_id", n.UserID).Str("type", n.Type).
			Msg("failed to create notification")
	}
}

func itemURL(itemID string) string {
	return "/items/" + itemID
}

// ItemCreated notifies every assignee other than the creator that they
// were assigned.
func (s *Service) ItemCreated(item *models.Item, creator *models.User) {
	priority := models.NotifyPriorityNormal
	if item.Priority == models.PriorityHigh || item.Priority == models.PriorityUrgent {
		priority = models.NotifyPriorityHigh
	}
	itemID := item.ID
	for _, assigneeID := range item.AssigneeIDs {
		if assigneeID == creator.ID {
			continue
		}
		s.deliver(&models.Notification{
			UserID:    assigneeID,
			ItemID:    &itemID,
			Title:     "New Item Assigned",
			Message:   fmt.Sprintf("%s assigned you to: %s", creator.Username, item.Title),
			Type:      models.NotifyItemAssigned,
			Priority:  priority,
			ActionURL: itemURL(item.ID),
		})
	}
}

// ItemUpdated notifies assignees other than the updater, then the
// creator once if they are neither the updater nor an assignee.
func (s *Service) ItemUpdated(item *models.Item, updater *models.User, changes map[string]interface{}) {
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	summary := strings.Join(fields, ", ")

	var metadata string
	if raw, err := json.Marshal(changes); err == nil {
		metadata = string(raw)
	}

	itemID := item.ID
	for _, assigneeID := range item.AssigneeIDs {
		if assigneeID == updater.ID {
			continue
		}
		s.deliver(&models.Notification{
			UserID:    assigneeID,
			ItemID:    &itemID,
			Title:     "Item Updated",
			Message:   fmt.Sprintf("%s updated %s (%s)", updater.Username, item.Title, summary),
			Type:      models.NotifyItemUpdated,
			Priority:  models.NotifyPriorityNormal,
			Metadata:  metadata,
			ActionURL: itemURL(item.ID),
		})
	}

	if item.CreatedByID != nil && *item.CreatedByID != updater.ID && !item.IsAssignee(*item.CreatedByID) {
		s.deliver(&models.Notification{
			UserID:    *item.CreatedByID,
			ItemID:    &itemID,
			Title:     "Your Item Was Updated",
			Message:   fmt.Sprintf("%s updated %s (%s)", updater.Username, item.Title, summary),
			Type:      models.NotifyItemUpdated,
			Priority:  models.NotifyPriorityNormal,
			Metadata:  metadata,
			ActionURL: itemURL(item.ID),
		})
	}
}

// ItemCompleted notifies the creator unless they completed it
// themselves, then the remaining assignees.
func (s *Service) ItemCompleted(item *models.Item, completer *models.User) {
	itemID := item.ID
	message := fmt.Sprintf("%s completed: %s", completer.Username, item.Title)

	notified := map[string]bool{completer.ID: true}
	if item.CreatedByID != nil && *item.CreatedByID != completer.ID {
		s.deliver(&models.Notification{
			UserID:    *item.CreatedByID,
			ItemID:    &itemID,
			Title:     "Item Completed",
			Message:   message,
			Type:      models.NotifyItemCompleted,
			Priority:  models.NotifyPriorityNormal,
			ActionURL: itemURL(item.ID),
		})
		notified[*item.CreatedByID] = true
	}

	for _, assigneeID := range item.AssigneeIDs {
		if notified[assigneeID] {
			continue
		}
		s.deliver(&models.Notification{
			UserID:    assigneeID,
			ItemID:    &itemID,
			Title:     "Item Completed",
			Message:   message,
			Type:      models.NotifyItemCompleted,
			Priority:  models.NotifyPriorityNormal,
			ActionURL: itemURL(item.ID),
		})
	}
}

// CommentAdded notifies assignees other than the author, then the
// creator if they were not already covered.
func (s *Service) CommentAdded(comment *models.Comment, item *models.Item, author *models.User) {
	itemID := item.ID
	commentID := comment.ID
	actionURL := fmt.Sprintf("/items/%s#comment-%s", item.ID, comment.ID)
	message := fmt.Sprintf("%s commented on: %s", author.Username, item.Title)

	notified := map[string]bool{author.ID: true}
	for _, assigneeID := range item.AssigneeIDs {
		if notified[assigneeID] {
			continue
		}
		s.deliver(&models.Notification{
			UserID:    assigneeID,
			ItemID:    &itemID,
			CommentID: &commentID,
			Title:     "New Comment",
			Message:   message,
			Type:      models.NotifyCommentAdded,
			Priority:  models.NotifyPriorityNormal,
			ActionURL: actionURL,
		})
		notified[assigneeID] = true
	}

	if item.CreatedByID != nil && !notified[*item.CreatedByID] {
		s.deliver(&models.Notification{
			UserID:    *item.CreatedByID,
			ItemID:    &itemID,
			CommentID: &commentID,
			Title:     "New Comment on Your Item",
			Message:   message,
			Type:      models.NotifyCommentAdded,
			Priority:  models.NotifyPriorityNormal,
			ActionURL: actionURL,
		})
	}
}
