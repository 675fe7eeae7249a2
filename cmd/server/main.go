package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/lexflowhq/lexflow-api/internal/adapter/calendar"
	"github.com/lexflowhq/lexflow-api/internal/adapter/mail"
	"github.com/lexflowhq/lexflow-api/internal/adapter/store"
	"github.com/lexflowhq/lexflow-api/internal/handler"
	"github.com/lexflowhq/lexflow-api/internal/middleware"
	"github.com/lexflowhq/lexflow-api/internal/service"
	"github.com/lexflowhq/lexflow-api/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting LexFlow API",
		"port", cfg.Port,
		"google_redirect", cfg.GoogleRedirectURL,
		"invite_ttl_hours", cfg.InviteTTLHours,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	// ── Adapters ─────────────────────────────────────────────────────────
	googleCalendar := calendar.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	inviteMailer := mail.NewLogMailer()

	// ── Services ─────────────────────────────────────────────────────────
	authService := service.NewAuthService(pgStore, cfg)
	calendarService := service.NewCalendarService(googleCalendar, pgStore, cfg)
	inviteService := service.NewInviteService(pgStore, pgStore, inviteMailer, cfg)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "x-event-id"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Public Routes ────────────────────────────────────────────────────
	authHandler := handler.NewAuthHandler(authService)
	authHandler.Register(app)

	calendarHandler := handler.NewCalendarHandler(calendarService, cfg.FrontendURL)
	calendarHandler.RegisterPublic(app)

	inviteHandler := handler.NewInviteHandler(inviteService)
	inviteHandler.RegisterPublic(app)

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Protected Routes ─────────────────────────────────────────────────
	jwtMiddleware := middleware.JWTMiddleware(middleware.JWTConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		ExpiresIn: time.Duration(cfg.JWTExpiration) * time.Hour,
	})

	api := app.Group("/api/v1", jwtMiddleware)

	calendarHandler.Register(api)
	inviteHandler.Register(api)

	handler.NewCaseHandler(pgStore).Register(api)
	handler.NewClientHandler(pgStore).Register(api)
	handler.NewDeadlineHandler(pgStore).Register(api)
	handler.NewFinanceHandler(pgStore).Register(api)
	handler.NewDashboardHandler(pgStore).Register(api)
	handler.NewAuditHandler(pgStore).Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
