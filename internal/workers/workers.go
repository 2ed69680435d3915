package workers

import (
	"github.com/rs/zerolog/log"

	"taskhub/internal/engine/mailer"
	"taskhub/internal/engine/notifications"
)

// Sweeper bundles the periodic jobs: the overdue notification sweep and
// the email batches. Each run is synchronous to completion.
type Sweeper struct {
	notifications *notifications.Service
	mail          *mailer.Service
	reminderDays  int
}

func NewSweeper(notificationSvc *notifications.Service, mailSvc *mailer.Service, reminderDays int) *Sweeper {
	if reminderDays <= 0 {
		reminderDays = 2
	}
	return &Sweeper{
		notifications: notificationSvc,
		mail:          mailSvc,
		reminderDays:  reminderDays,
	}
}

// RunOverdueSweep flags overdue items in-app, then mails the overdue
// batch.
func (s *Sweeper) RunOverdueSweep() {
	result, err := s.notifications.CheckAndNotifyOverdueItems()
	if err != nil {
		log.Error().Err(err).Msg("overdue sweep failed")
		return
	}
	log.Info().Int("items_notified", result.ItemsNotified).Msg("overdue sweep finished")

	stats, err := s.mail.SendOverdueNotifications()
	if err != nil {
		log.Error().Err(err).Msg("overdue mail batch failed")
		return
	}
	log.Info().Int("sent", stats.SuccessfulNotifications).Int("failed", stats.FailedNotifications).
		Msg("overdue mail batch finished")
}

// RunReminderSweep mails assignees of items approaching their due date.
func (s *Sweeper) RunReminderSweep() {
	stats, err := s.mail.SendDueDateReminders(s.reminderDays)
	if err != nil {
		log.Error().Err(err).Msg("reminder mail batch failed")
		return
	}
	log.Info().Int("sent", stats.SuccessfulNotifications).Int("failed", stats.FailedNotifications).
		Msg("reminder mail batch finished")
}
