package notifications

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"taskhub/internal/platform/models"
)

// SweepResult summarizes one overdue sweep run.
type SweepResult struct {
	ItemsChecked      int `json:"items_checked"`
	ItemsNotified     int `json:"items_notified"`
	NotificationsSent int `json:"notifications_sent"`
}

// CheckAndNotifyOverdueItems scans for items past their due date and
// notifies assignees at urgent priority, plus the creator when they are
// not an assignee. An item already flagged today (UTC) is skipped, so
// running the sweep repeatedly within a day stays idempotent.
func (s *Service) CheckAndNotifyOverdueItems() (*SweepResult, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Unix()

	candidates, err := s.repo.OverdueCandidates(now.Unix())
	if err != nil {
		return nil, err
	}

	result := &SweepResult{ItemsChecked: len(candidates)}
	for _, item := range candidates {
		already, err := s.repo.HasOverdueNoticeSince(item.ID, dayStart)
		if err != nil {
			log.Error().Err(err).Str("item_id", item.ID).Msg("overdue dedup check failed")
			continue
		}
		if already {
			continue
		}

		itemID := item.ID
		sent := 0
		for _, assigneeID := range item.AssigneeIDs {
			s.deliver(&models.Notification{
				UserID:    assigneeID,
				ItemID:    &itemID,
				Title:     "Item Overdue",
				Message:   fmt.Sprintf("Item is overdue: %s", item.Title),
				Type:      models.NotifyItemOverdue,
				Priority:  models.NotifyPriorityUrgent,
				ActionURL: itemURL(item.ID),
			})
			sent++
		}
		if item.CreatedByID != nil && !item.IsAssignee(*item.CreatedByID) {
			s.deliver(&models.Notification{
				UserID:    *item.CreatedByID,
				ItemID:    &itemID,
				Title:     "Your Item is Overdue",
				Message:   fmt.Sprintf("Item is overdue: %s", item.Title),
				Type:      models.NotifyItemOverdue,
				Priority:  models.NotifyPriorityUrgent,
				ActionURL: itemURL(item.ID),
			})
			sent++
		}
		if sent > 0 {
			result.ItemsNotified++
			result.NotificationsSent += sent
		}
	}

	log.Info().Int("checked", result.ItemsChecked).Int("notified", result.ItemsNotified).
		Int("sent", result.NotificationsSent).Msg("overdue sweep complete")
	return result, nil
}
