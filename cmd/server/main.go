package main

import (
	"fmt"
	"log"
	"net/http"

	"taskhub/internal/api"
	"taskhub/internal/api/handlers"
	"taskhub/internal/api/middleware"
	"taskhub/internal/engine/analytics"
	"taskhub/internal/engine/comments"
	"taskhub/internal/engine/export"
	"taskhub/internal/engine/items"
	"taskhub/internal/engine/notifications"
	"taskhub/internal/engine/webhooks"
	"taskhub/internal/pkg/logger"
	"taskhub/internal/platform/activity"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/config"
	"taskhub/internal/platform/database"
	"taskhub/internal/platform/repositories"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	teamRepo := repositories.NewTeamRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)
	usageRepo := repositories.NewUsageLogRepository(db)
	itemRepo := items.NewRepository(db)
	commentRepo := comments.NewRepository(db)
	notificationRepo := notifications.NewRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	activityLog := activity.NewLogger(db)
	notificationSvc := notifications.NewService(notificationRepo)
	dispatcher := webhooks.NewDispatcher(webhookRepo)
	itemSvc := items.NewService(itemRepo, activityLog, notificationSvc, dispatcher)
	commentSvc := comments.NewService(commentRepo, itemRepo, activityLog, notificationSvc, dispatcher)
	analyticsSvc := analytics.NewService(db)
	exportSvc := export.NewService(export.NewRepository(db), analyticsSvc)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc, userRepo)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(apiKeyRepo, orgRepo)
	usageMiddleware := middleware.NewUsageMiddleware(usageRepo)

	deps := &api.Dependencies{
		AuthHandler:         handlers.NewAuthHandler(userRepo, orgRepo, tokenSvc),
		OrgHandler:          handlers.NewOrgHandler(orgRepo),
		UserHandler:         handlers.NewUserHandler(userRepo),
		TeamHandler:         handlers.NewTeamHandler(teamRepo, userRepo),
		ItemHandler:         handlers.NewItemHandler(itemSvc),
		CommentHandler:      handlers.NewCommentHandler(commentSvc),
		TagHandler:          handlers.NewTagHandler(tagRepo),
		ActivityHandler:     handlers.NewActivityHandler(activityLog),
		NotificationHandler: handlers.NewNotificationHandler(notificationSvc),
		APIKeyHandler:       handlers.NewAPIKeyHandler(apiKeyRepo),
		WebhookHandler:      handlers.NewWebhookHandler(webhookRepo),
		AnalyticsHandler:    handlers.NewAnalyticsHandler(analyticsSvc),
		ExportHandler:       handlers.NewExportHandler(exportSvc),
		IntegrationHandler:  handlers.NewIntegrationHandler(itemSvc, analyticsSvc, exportSvc),
		HealthHandler:       handlers.NewHealthHandler(db),
		AuthMiddleware:      authMiddleware,
		APIKeyMiddleware:    apiKeyMiddleware,
		UsageMiddleware:     usageMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
