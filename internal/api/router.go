package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "taskhub/internal/api/context"
	"taskhub/internal/api/handlers"
	"taskhub/internal/api/middleware"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/models"
)

type Dependencies struct {
	AuthHandler         *handlers.AuthHandler
	OrgHandler          *handlers.OrgHandler
	UserHandler         *handlers.UserHandler
	TeamHandler         *handlers.TeamHandler
	ItemHandler         *handlers.ItemHandler
	CommentHandler      *handlers.CommentHandler
	TagHandler          *handlers.TagHandler
	ActivityHandler     *handlers.ActivityHandler
	NotificationHandler *handlers.NotificationHandler
	APIKeyHandler       *handlers.APIKeyHandler
	WebhookHandler      *handlers.WebhookHandler
	AnalyticsHandler    *handlers.AnalyticsHandler
	ExportHandler       *handlers.ExportHandler
	IntegrationHandler  *handlers.IntegrationHandler
	HealthHandler       *handlers.HealthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	APIKeyMiddleware    *middleware.APIKeyMiddleware
	UsageMiddleware     *middleware.UsageMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	authMid := deps.AuthMiddleware.Handle
	keyMid := deps.APIKeyMiddleware.Handle
	usageMid := deps.UsageMiddleware.Handle
	read := middleware.RateLimit("api_read")
	write := middleware.RateLimit("api_write")
	exportLimit := middleware.RateLimit("export")

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Authentication
	router.POST("/api/v1/auth/organizations", wrap(deps.AuthHandler.CreateOrganization))
	router.POST("/api/v1/auth/register", wrap(deps.AuthHandler.Register))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))
	router.POST("/api/v1/auth/refresh", wrap(deps.AuthHandler.Refresh))

	// Organization
	router.GET("/api/v1/organizations/current",
		chain(deps.OrgHandler.GetCurrent, authMid, usageMid, read))
	router.PATCH("/api/v1/organizations/current",
		chain(deps.OrgHandler.Update, authMid, usageMid, requireRole(models.RoleAdmin), write))

	// Users
	router.GET("/api/v1/users",
		chain(deps.UserHandler.List, authMid, usageMid, read))
	router.GET("/api/v1/users/:user_id",
		chain(deps.UserHandler.Get, authMid, usageMid, read))
	router.PATCH("/api/v1/users/:user_id/role",
		chain(deps.UserHandler.UpdateRole, authMid, usageMid, requireRole(models.RoleOwner), write))
	router.DELETE("/api/v1/users/:user_id",
		chain(deps.UserHandler.Deactivate, authMid, usageMid, requireRole(models.RoleOwner), write))

	// Teams
	router.POST("/api/v1/teams",
		chain(deps.TeamHandler.Create, authMid, usageMid, requireRole(models.RoleAdmin), write))
	router.GET("/api/v1/teams",
		chain(deps.TeamHandler.List, authMid, usageMid, read))
	router.GET("/api/v1/teams/:team_id",
		chain(deps.TeamHandler.Get, authMid, usageMid, read))
	router.POST("/api/v1/teams/:team_id/members",
		chain(deps.TeamHandler.AddMember, authMid, usageMid, requireRole(models.RoleAdmin), write))
	router.GET("/api/v1/teams/:team_id/members",
		chain(deps.TeamHandler.ListMembers, authMid, usageMid, read))

	// Items
	router.POST("/api/v1/items",
		chain(deps.ItemHandler.Create, authMid, usageMid, requireRole(models.RoleMember), write))
	router.GET("/api/v1/items",
		chain(deps.ItemHandler.List, authMid, usageMid, read))
	router.GET("/api/v1/items/:item_id",
		chain(deps.ItemHandler.Get, authMid, usageMid, read))
	router.PATCH("/api/v1/items/:item_id",
		chain(deps.ItemHandler.Update, authMid, usageMid, requireRole(models.RoleMember), write))
	router.DELETE("/api/v1/items/:item_id",
		chain(deps.ItemHandler.Delete, authMid, usageMid, requireRole(models.RoleMember), write))
	router.POST("/api/v1/items/:item_id/attachments",
		chain(deps.ItemHandler.AddAttachment, authMid, usageMid, requireRole(models.RoleMember), write))
	router.GET("/api/v1/items/:item_id/attachments",
		chain(deps.ItemHandler.ListAttachments, authMid, usageMid, read))

	// Comments
	router.POST("/api/v1/items/:item_id/comments",
		chain(deps.CommentHandler.Add, authMid, usageMid, requireRole(models.RoleMember), write))
	router.GET("/api/v1/items/:item_id/comments",
		chain(deps.CommentHandler.List, authMid, usageMid, read))

	// Tags
	router.POST("/api/v1/tags",
		chain(deps.TagHandler.Create, authMid, usageMid, requireRole(models.RoleMember), write))
	router.GET("/api/v1/tags",
		chain(deps.TagHandler.List, authMid, usageMid, read))

	// Activity log
	router.GET("/api/v1/activity",
		chain(deps.ActivityHandler.List, authMid, usageMid, read))

	// Notifications. httprouter rejects static siblings of a wildcard
	// segment, so aggregate routes live outside the :notification_id tree.
	router.GET("/api/v1/notifications",
		chain(deps.NotificationHandler.List, authMid, usageMid, read))
	router.GET("/api/v1/notification-stats",
		chain(deps.NotificationHandler.Stats, authMid, usageMid, read))
	router.GET("/api/v1/notification-preferences",
		chain(deps.NotificationHandler.GetPreferences, authMid, usageMid, read))
	router.PATCH("/api/v1/notification-preferences",
		chain(deps.NotificationHandler.UpdatePreferences, authMid, usageMid, write))
	router.POST("/api/v1/bulk/notifications/read",
		chain(deps.NotificationHandler.MarkBulkRead, authMid, usageMid, write))
	router.POST("/api/v1/bulk/notifications/read-all",
		chain(deps.NotificationHandler.MarkAllRead, authMid, usageMid, write))
	router.DELETE("/api/v1/bulk/notifications/read",
		chain(deps.NotificationHandler.DeleteAllRead, authMid, usageMid, write))
	router.GET("/api/v1/notifications/:notification_id",
		chain(deps.NotificationHandler.Get, authMid, usageMid, read))
	router.POST("/api/v1/notifications/:notification_id/read",
		chain(deps.NotificationHandler.MarkRead, authMid, usageMid, write))
	router.DELETE("/api/v1/notifications/:notification_id",
		chain(deps.NotificationHandler.Delete, authMid, usageMid, write))

	// API keys
	router.POST("/api/v1/api-keys",
		chain(deps.APIKeyHandler.Create, authMid, usageMid, requireRole(models.RoleAdmin), write))
	router.GET("/api/v1/api-keys",
		chain(deps.APIKeyHandler.List, authMid, usageMid, requireRole(models.RoleAdmin), read))
	router.DELETE("/api/v1/api-keys/:key_id",
		chain(deps.APIKeyHandler.Revoke, authMid, usageMid, requireRole(models.RoleAdmin), write))

	// Webhooks
	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid, usageMid, requireRole(models.RoleAdmin), write))
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid, usageMid, requireRole(models.RoleAdmin), read))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid, usageMid, requireRole(models.RoleAdmin), write))

	// Analytics
	router.GET("/api/v1/analytics/items",
		chain(deps.AnalyticsHandler.Items, authMid, usageMid, read))
	router.GET("/api/v1/analytics/usage",
		chain(deps.AnalyticsHandler.Usage, authMid, usageMid, read))

	// Exports and reports
	router.GET("/api/v1/export/items.csv",
		chain(deps.ExportHandler.ItemsCSV, authMid, usageMid, exportLimit))
	router.GET("/api/v1/export/items.json",
		chain(deps.ExportHandler.ItemsJSON, authMid, usageMid, exportLimit))
	router.GET("/api/v1/export/activity.csv",
		chain(deps.ExportHandler.ActivityCSV, authMid, usageMid, exportLimit))
	router.GET("/api/v1/reports/teams/:team_id",
		chain(deps.ExportHandler.TeamReport, authMid, usageMid, read))
	router.GET("/api/v1/reports/users/:user_id",
		chain(deps.ExportHandler.UserReport, authMid, usageMid, read))
	router.GET("/api/v1/reports/organization",
		chain(deps.ExportHandler.OrgSummary, authMid, usageMid, requireRole(models.RoleAdmin), read))

	// API-key surface for integrations
	router.GET("/api/v1/integrations/items",
		chain(deps.IntegrationHandler.ListItems, keyMid, usageMid, read))
	router.GET("/api/v1/integrations/items/:item_id",
		chain(deps.IntegrationHandler.GetItem, keyMid, usageMid, read))
	router.GET("/api/v1/integrations/analytics/items",
		chain(deps.IntegrationHandler.ItemAnalytics, keyMid, usageMid, read))
	router.GET("/api/v1/integrations/analytics/usage",
		chain(deps.IntegrationHandler.UsageAnalytics, keyMid, usageMid, read))
	router.GET("/api/v1/integrations/export/items.csv",
		chain(deps.IntegrationHandler.ItemsCSV, keyMid, usageMid, exportLimit))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

// requireRole gates a route on the role hierarchy: any role ranking at
// or above the minimum passes.
func requireRole(minRole string) func(http.HandlerFunc) http.HandlerFunc {
	minRank := models.RoleRank(minRole)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok || models.RoleRank(claims.Role) < minRank {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}
			next(w, r)
		}
	}
}
