package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/fleetdesk/internal/config"
	"github.com/dimitrije/fleetdesk/internal/database"
	"github.com/dimitrije/fleetdesk/internal/handlers"
	authmw "github.com/dimitrije/fleetdesk/internal/middleware"
	"github.com/dimitrije/fleetdesk/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/sirupsen/logrus"
)

func setupLogger(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	setupLogger(cfg)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)
	teamService := services.NewTeamService(db)
	tokenService := services.NewTokenService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	if !emailService.IsConfigured() {
		logrus.Warn("SMTP is not configured, verification and reset emails will not be sent")
	}

	teamHandler := handlers.NewTeamHandler(teamService, tokenService, emailService, cfg.BaseURL, cfg.VerificationExpiry)
	authHandler := handlers.NewAuthHandler(teamService, tokenService, jwtService, emailService, cfg.BaseURL, cfg.ResetExpiry)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify", authHandler.VerifyEmail)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	team := api.Group("/team")
	team.Use(authmw.Auth(jwtService))
	team.Get("/members", teamHandler.ListMembers)
	team.Post("/register", teamHandler.Register)
	team.Delete("/members/:email", teamHandler.RemoveMember)
	team.Put("/members/:email/privileges", teamHandler.UpdatePrivileges)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if err := tokenService.CleanupExpired(context.Background()); err != nil {
				logrus.WithError(err).Warn("failed to clean up expired member tokens")
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logrus.Infof("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
}
