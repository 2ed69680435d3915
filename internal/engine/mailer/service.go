package mailer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"taskhub/internal/platform/models"
)

// Preferences exposes the per-user notification toggles; satisfied by
// the notifications repository.
type Preferences interface {
	GetOrCreatePreferences(userID string) (*models.NotificationPreference, error)
}

type Service struct {
	sender Sender
	repo   *Repository
	prefs  Preferences
}

func NewService(sender Sender, repo *Repository, prefs Preferences) *Service {
	return &Service{sender: sender, repo: repo, prefs: prefs}
}

// BatchStats summarizes a batch mailing run.
type BatchStats struct {
	TotalItems              int `json:"total_items"`
	TotalNotifications      int `json:"total_notifications"`
	SuccessfulNotifications int `json:"successful_notifications"`
	FailedNotifications     int `json:"failed_notifications"`
}

func (s *Service) wantsEmail(userID string, pick func(*models.NotificationPreference) bool) bool {
	p, err := s.prefs.GetOrCreatePreferences(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load mail preferences")
		return false
	}
	return p.EmailEnabled && pick(p)
}

// NotifyItemAssigned mails an assignment notice, honoring the
// recipient's preference toggles.
func (s *Service) NotifyItemAssigned(assignee *models.User, item *models.Item, assigner *models.User) error {
	if !s.wantsEmail(assignee.ID, func(p *models.NotificationPreference) bool { return p.EmailItemAssigned }) {
		return nil
	}
	subject := fmt.Sprintf("You've been assigned: %s", item.Title)
	text := fmt.Sprintf("Hi %s,\n\n%s assigned you to %q.\n\nOpen it at %s",
		assignee.Username, assigner.Username, item.Title, itemLink(item.ID))
	html := fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> assigned you to <strong>%s</strong>.</p><p><a href=%q>View item</a></p>",
		assignee.Username, assigner.Username, item.Title, itemLink(item.ID))
	return s.sender.Send(assignee.Email, subject, text, html)
}

func (s *Service) NotifyCommentAdded(recipient *models.User, item *models.Item, author *models.User, comment *models.Comment) error {
	if !s.wantsEmail(recipient.ID, func(p *models.NotificationPreference) bool { return p.EmailCommentAdded }) {
		return nil
	}
	subject := fmt.Sprintf("New comment on: %s", item.Title)
	text := fmt.Sprintf("Hi %s,\n\n%s commented on %q:\n\n%s\n\nOpen it at %s",
		recipient.Username, author.Username, item.Title, comment.Content, itemLink(item.ID))
	html := fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> commented on <strong>%s</strong>:</p><blockquote>%s</blockquote><p><a href=%q>View item</a></p>",
		recipient.Username, author.Username, item.Title, comment.Content, itemLink(item.ID))
	return s.sender.Send(recipient.Email, subject, text, html)
}

func (s *Service) NotifyStatusChanged(recipient *models.User, item *models.Item, actor *models.User, oldStatus, newStatus string) error {
	if !s.wantsEmail(recipient.ID, func(p *models.NotificationPreference) bool { return p.EmailItemUpdated }) {
		return nil
	}
	subject := fmt.Sprintf("Status changed: %s", item.Title)
	text := fmt.Sprintf("Hi %s,\n\n%s moved %q from %s to %s.\n\nOpen it at %s",
		recipient.Username, actor.Username, item.Title, oldStatus, newStatus, itemLink(item.ID))
	html := fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> moved <strong>%s</strong> from <em>%s</em> to <em>%s</em>.</p><p><a href=%q>View item</a></p>",
		recipient.Username, actor.Username, item.Title, oldStatus, newStatus, itemLink(item.ID))
	return s.sender.Send(recipient.Email, subject, text, html)
}

// SendDueDateReminders mails assignees of open items due within the
// next daysBefore days.
func (s *Service) SendDueDateReminders(daysBefore int) (*BatchStats, error) {
	now := time.Now().Unix()
	to := now + int64(daysBefore)*86400

	batches, err := s.repo.ListDueBetween(now, to)
	if err != nil {
		return nil, err
	}
	return s.mailBatch(batches, func(item *models.Item) (string, string) {
		due := time.Unix(*item.DueDate, 0).UTC().Format("2006-01-02")
		return fmt.Sprintf("Reminder: %s is due %s", item.Title, due),
			fmt.Sprintf("%q is due on %s.\n\nOpen it at %s", item.Title, due, itemLink(item.ID))
	}), nil
}

// SendOverdueNotifications mails assignees of every open item past its
// due date.
func (s *Service) SendOverdueNotifications() (*BatchStats, error) {
	batches, err := s.repo.ListOverdue(time.Now().Unix())
	if err != nil {
		return nil, err
	}
	return s.mailBatch(batches, func(item *models.Item) (string, string) {
		return fmt.Sprintf("Overdue: %s", item.Title),
			fmt.Sprintf("%q is past its due date.\n\nOpen it at %s", item.Title, itemLink(item.ID))
	}), nil
}

func (s *Service) mailBatch(batches []*ItemBatch, compose func(*models.Item) (subject, text string)) *BatchStats {
	stats := &BatchStats{TotalItems: len(batches)}
	for _, b := range batches {
		subject, text := compose(b.Item)
		for _, u := range b.Assignees {
			if !s.wantsEmail(u.ID, func(p *models.NotificationPreference) bool { return p.EmailItemUpdated }) {
				continue
			}
			stats.TotalNotifications++
			if err := s.sender.Send(u.Email, subject, text, ""); err != nil {
				log.Error().Err(err).Str("user_id", u.ID).Str("item_id", b.Item.ID).
					Msg("failed to send batch mail")
				stats.FailedNotifications++
				continue
			}
			stats.SuccessfulNotifications++
		}
	}
	return stats
}

func itemLink(itemID string) string {
	return "/items/" + itemID
}
