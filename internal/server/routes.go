package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serptrack/internal/db"
	"serptrack/internal/handlers"
	"serptrack/internal/handlers/api"
	"serptrack/internal/middleware"
	"serptrack/internal/provider"
	"serptrack/internal/ranking"
	"serptrack/internal/scheduler"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB, registry *provider.Registry, svc *ranking.Service, sched *scheduler.Scheduler) {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(database, s.Cfg)

	// Initialize handlers
	domainHandler := api.NewDomainHandler(database)
	keywordHandler := api.NewKeywordHandler(database, svc)
	notificationHandler := api.NewNotificationHandler(database)
	settingsHandler := api.NewSettingsHandler(database, registry)
	refreshHandler := api.NewRefreshHandler(sched)
	lookupHandler := api.NewLookupHandler(database, svc, s.Cfg)
	probeHandler := handlers.NewProbeHandler(database)

	// Health probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public instant lookup - no account needed, IP limited instead
	s.App.Post("/api/lookup", lookupHandler.Lookup)

	// Authenticated API
	apiGroup := s.App.Group("/api", authMiddleware.RequireUser)

	apiGroup.Get("/domains", domainHandler.List)
	apiGroup.Post("/domains", domainHandler.Create)
	apiGroup.Put("/domains/:id", domainHandler.SetActive)
	apiGroup.Delete("/domains/:id", domainHandler.Delete)

	apiGroup.Get("/keywords", keywordHandler.List)
	apiGroup.Post("/keywords", keywordHandler.Create)
	apiGroup.Get("/keywords/:id", keywordHandler.Get)
	apiGroup.Put("/keywords/:id", keywordHandler.Update)
	apiGroup.Delete("/keywords/:id", keywordHandler.Delete)
	apiGroup.Post("/keywords/:id/check", keywordHandler.Check)
	apiGroup.Get("/keywords/:id/rankings", keywordHandler.Rankings)
	apiGroup.Get("/keywords/:id/serp", keywordHandler.Serp)

	apiGroup.Get("/notifications", notificationHandler.List)
	apiGroup.Put("/notifications/read-all", notificationHandler.MarkAllRead)
	apiGroup.Put("/notifications/:id/read", notificationHandler.MarkRead)

	apiGroup.Get("/settings/provider", settingsHandler.GetProvider)
	apiGroup.Put("/settings/provider", settingsHandler.SetProvider)
	apiGroup.Put("/settings/api-key", settingsHandler.SetAPIKey)

	apiGroup.Post("/refresh-all", refreshHandler.RefreshAll)
}
