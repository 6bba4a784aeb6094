package router

import (
	"fmt"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/handlers"
	"github.com/anonto42/rating-notify/backend/internal/middleware"
	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/anonto42/rating-notify/backend/internal/realtime"
	"github.com/anonto42/rating-notify/backend/internal/repositories"
	"github.com/anonto42/rating-notify/backend/internal/services"
	"github.com/anonto42/rating-notify/backend/pkg/config"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Dependencies carries the connections and settings the routes are built from
type Dependencies struct {
	Postgres *gorm.DB
	Mongo    *mongo.Database
	// Redis is optional; without it live notifications stay on this instance
	Redis *redis.Client

	AuthProvider string
	JWTSecret    string
	FirebaseAuth middleware.TokenVerifier

	FanoutConcurrency  int
	FanoutTimeout      time.Duration
	SubscriptionBuffer int

	// AllowedOrigins limits websocket upgrades; "*" or empty allows any origin
	AllowedOrigins []string

	Logger *logrus.Logger
}

// App exposes the background parts of the wiring that main has to drive
type App struct {
	Dispatcher *services.EventDispatcher
	// Relay is nil when Redis is not configured
	Relay *realtime.RedisRelay
}

// AutoMigrate migrates the PostgreSQL models
func AutoMigrate(pgdb *gorm.DB) error {
	return pgdb.AutoMigrate(
		&models.Profile{},
		&models.RatingComment{},
		&models.RatingLike{},
		&models.Notification{},
		&models.NotificationSettings{},
	)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) (*App, error) {
	log := deps.Logger.WithField("component", "router")

	if err := AutoMigrate(deps.Postgres); err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	profileRepo := repositories.NewPostgresProfileRepository(deps.Postgres)
	ratingRepo := repositories.NewMongoRatingRepository(deps.Mongo)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)
	settingsRepo := repositories.NewPostgresNotificationSettingsRepository(deps.Postgres)

	// --- Live delivery ---
	hub := realtime.NewHub(deps.SubscriptionBuffer, deps.Logger.WithField("component", "hub"))
	app := &App{}
	var publisher services.Publisher = hub
	if deps.Redis != nil {
		app.Relay = realtime.NewRedisRelay(deps.Redis, hub, deps.Logger.WithField("component", "relay"))
		publisher = app.Relay
		log.Info("Live notifications relayed through Redis.")
	}

	// --- Notification pipeline ---
	notificationService := services.NewNotificationService(
		deps.Logger.WithField("component", "notifications"),
		services.NewFanoutEngine(ratingRepo, commentRepo, profileRepo),
		services.NewSettingsGate(settingsRepo),
		notificationRepo,
		profileRepo,
		publisher,
		hub,
		services.Options{FanoutConcurrency: deps.FanoutConcurrency},
	)
	app.Dispatcher = services.NewEventDispatcher(notificationService, deps.FanoutTimeout)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	switch deps.AuthProvider {
	case config.AuthProviderFirebase:
		api.Use(middleware.FirebaseAuthMiddleware(deps.FirebaseAuth, profileRepo))
		log.Info("Firebase authentication middleware applied to /api/v1 group.")
	default:
		api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret))
		log.Info("JWT authentication middleware applied to /api/v1 group.")
	}

	// Like routes
	likeHandler := handlers.NewLikeHandler(likeRepo, ratingRepo, app.Dispatcher)
	likeHandler.RegisterLikeRoutes(api)
	log.Info("Like routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, ratingRepo, app.Dispatcher)
	commentHandler.RegisterCommentRoutes(api)
	log.Info("Comment routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationService, deps.Logger.WithField("component", "http"), deps.AllowedOrigins)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Info("Notification routes configured.")

	log.Info("All routes configured.")
	return app, nil
}
