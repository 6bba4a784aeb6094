package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/router"
	"github.com/anonto42/rating-notify/backend/internal/validators"
	"github.com/anonto42/rating-notify/backend/pkg/config"
	"github.com/anonto42/rating-notify/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg)
	log := logger.WithField("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	deps := router.Dependencies{
		Postgres:           db.Postgres,
		Mongo:              db.Mongo.Database(cfg.MongoDatabase),
		Redis:              db.Redis,
		AuthProvider:       cfg.AuthProvider,
		JWTSecret:          cfg.JWTSecret,
		FanoutConcurrency:  cfg.FanoutConcurrency,
		FanoutTimeout:      cfg.FanoutTimeout,
		SubscriptionBuffer: cfg.SubscriptionBuffer,
		AllowedOrigins:     cfg.AllowedOrigins,
		Logger:             logger,
	}

	// Initialize Firebase
	if cfg.AuthProvider == config.AuthProviderFirebase {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		deps.FirebaseAuth = firebaseApp.AuthClient
		log.Info("Firebase app and auth client initialized successfully!")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Debug = !cfg.IsProduction()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, logger, cfg.AllowedOrigins)

	// Setup routes and dependencies
	app, err := router.SetupRoutes(e, deps)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	if app.Relay != nil {
		go func() {
			if err := app.Relay.Run(ctx); err != nil {
				log.WithError(err).Error("Redis relay stopped")
			}
		}()
	}

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	// Let in-flight fan-outs store their notifications before the databases close
	app.Dispatcher.Wait()
	log.Info("Server stopped.")
}
