package main

import (
	"log"
	"time"

	"taskhub/internal/engine/mailer"
	"taskhub/internal/engine/notifications"
	"taskhub/internal/pkg/logger"
	"taskhub/internal/platform/config"
	"taskhub/internal/platform/database"
	"taskhub/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	notificationRepo := notifications.NewRepository(db)
	notificationSvc := notifications.NewService(notificationRepo)
	mailSvc := mailer.NewService(
		mailer.NewSMTPSender(cfg.Email.SMTP),
		mailer.NewRepository(db),
		notificationRepo,
	)
	sweeper := workers.NewSweeper(notificationSvc, mailSvc, cfg.Sweeps.ReminderDays)

	overdueInterval := cfg.Sweeps.OverdueInterval
	if overdueInterval <= 0 {
		overdueInterval = time.Hour
	}
	reminderInterval := cfg.Sweeps.ReminderInterval
	if reminderInterval <= 0 {
		reminderInterval = 24 * time.Hour
	}

	go runTicker(overdueInterval, sweeper.RunOverdueSweep)
	go runTicker(reminderInterval, sweeper.RunReminderSweep)

	log.Println("Workers started")
	select {}
}

func runTicker(interval time.Duration, job func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		job()
	}
}
