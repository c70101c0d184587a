package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"survey_app_go/config"
	"survey_app_go/db"
	"survey_app_go/handlers"
	"survey_app_go/middleware"
	"survey_app_go/models"
	"survey_app_go/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.TursoDatabaseURL, cfg.TursoAuthToken, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.Company{},
		&models.SurveyTemplate{},
		&models.SurveyInstance{},
		&models.QuestionVisibility{},
		&models.SurveyResponse{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize export archival storage
	services.InitializeStorage(cfg)

	// Seed initial admin and default template
	if err := services.SeedAdminFromEnv(db.DB); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	if err := services.SeedDefaultTemplate(db.DB); err != nil {
		log.Fatalf("Failed to seed default template: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public survey routes (no authentication)
	e.GET("/api/surveys/:slug", handlers.GetSurveyHandler)
	e.POST("/api/surveys/:slug/responses", handlers.SubmitSurveyHandler, middleware.SubmissionRateLimiter.Middleware())
	e.POST("/api/responses", handlers.SubmitDirectResponseHandler, middleware.SubmissionRateLimiter.Middleware())

	// Auth routes
	e.POST("/api/auth/login", handlers.LoginHandler, middleware.LoginRateLimiter.Middleware())
	e.POST("/api/auth/forgot-password", handlers.ForgotPasswordHandler, middleware.PasswordResetRateLimiter.Middleware())
	e.POST("/api/auth/reset-password", handlers.ResetPasswordHandler, middleware.PasswordResetRateLimiter.Middleware())

	// Authenticated routes
	protected := e.Group("/api/admin")
	protected.Use(middleware.APIRateLimiter.Middleware())
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/logout", handlers.LogoutHandler)
		protected.GET("/me", handlers.GetCurrentUserHandler)

		// Read access for all dashboard roles
		protected.GET("/catalog", handlers.CatalogHandler)
		protected.GET("/companies", handlers.ListCompaniesHandler)
		protected.GET("/companies/:id", handlers.GetCompanyHandler)
		protected.GET("/templates", handlers.ListTemplatesHandler)
		protected.GET("/templates/:id", handlers.GetTemplateHandler)
		protected.GET("/instances", handlers.ListInstancesHandler)
		protected.GET("/instances/:id", handlers.GetInstanceHandler)
		protected.GET("/responses", handlers.ListResponsesHandler)
		protected.GET("/responses/:id", handlers.GetResponseHandler)
		protected.GET("/dashboard/stats", handlers.DashboardStatsHandler)
		protected.GET("/export/responses.csv", handlers.ExportResponsesCSVHandler)
		protected.GET("/export/responses.xlsx", handlers.ExportResponsesXLSXHandler)
		protected.GET("/export/responses/:id/pdf", handlers.ExportResponsePDFHandler)
		protected.GET("/export/archive", handlers.ListExportArchivesHandler)
		protected.GET("/export/archive/:name", handlers.DownloadExportArchiveHandler)
		protected.GET("/export/archive/:name/url", handlers.ExportArchiveURLHandler)

		// Configuration changes require the admin role
		adminRoutes := protected.Group("")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.POST("/companies", handlers.CreateCompanyHandler)
			adminRoutes.DELETE("/companies/:id", handlers.DeleteCompanyHandler)

			adminRoutes.POST("/templates", handlers.CreateTemplateHandler)
			adminRoutes.PUT("/templates/:id", handlers.UpdateTemplateHandler)
			adminRoutes.DELETE("/templates/:id", handlers.DeleteTemplateHandler)

			adminRoutes.POST("/instances", handlers.CreateInstanceHandler)
			adminRoutes.PATCH("/instances/:id", handlers.UpdateInstanceHandler)
			adminRoutes.PUT("/instances/:id/visibility", handlers.ReplaceInstanceVisibilityHandler)
			adminRoutes.DELETE("/instances/:id/visibility", handlers.ClearInstanceVisibilityHandler)
			adminRoutes.DELETE("/instances/:id", handlers.DeleteInstanceHandler)

			adminRoutes.DELETE("/responses/:id", handlers.DeleteResponseHandler)
			adminRoutes.DELETE("/export/archive/:name", handlers.DeleteExportArchiveHandler)

			adminRoutes.GET("/audit-logs", handlers.ListAuditLogsHandler)
			adminRoutes.GET("/audit-logs/:type/:id", handlers.ResourceAuditHistoryHandler)
		}
	}

	// Start background cleanup jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
			if err := services.CleanupExpiredTokens(db.DB); err != nil {
				log.Printf("Error cleaning up expired tokens: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
