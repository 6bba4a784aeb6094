package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/anonto42/rating-notify/backend/internal/middleware"
	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/anonto42/rating-notify/backend/internal/realtime"
	"github.com/anonto42/rating-notify/backend/internal/repositories"
	"github.com/anonto42/rating-notify/backend/internal/services"
	"github.com/anonto42/rating-notify/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testRatingID  = "65f1a2b3c4d5e6f708192a3b"
	ratingOwner   = uint(2)
	profileHeader = "X-Test-Profile"
)

type fakeRatingRepository struct {
	ratings map[string]models.Rating
}

func (f *fakeRatingRepository) GetRatingByID(_ context.Context, id string) (*models.Rating, error) {
	rating, ok := f.ratings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &rating, nil
}

func (f *fakeRatingRepository) GetOwnerID(ctx context.Context, id string) (uint, error) {
	rating, err := f.GetRatingByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return rating.ProfileID, nil
}

// testAuth stands in for the identity middleware; the caller's profile comes from a header
func testAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := c.Request().Header.Get(profileHeader); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "bad test profile")
			}
			middleware.SetProfileID(c, uint(id))
		}
		return next(c)
	}
}

type testServer struct {
	e          *echo.Echo
	db         *gorm.DB
	dispatcher *services.EventDispatcher
	service    *services.NotificationService
}

// newTestServer wires the handlers over sqlite. Without allowedOrigins any stream origin is accepted.
func newTestServer(t *testing.T, allowedOrigins ...string) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.RatingComment{},
		&models.RatingLike{},
		&models.Notification{},
		&models.NotificationSettings{},
	))
	for id := uint(1); id <= 4; id++ {
		require.NoError(t, db.Create(&models.Profile{
			ID:          id,
			DisplayName: fmt.Sprintf("profile-%d", id),
			Email:       fmt.Sprintf("profile-%d@example.com", id),
		}).Error)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := logrus.NewEntry(log)

	ratingID, err := primitive.ObjectIDFromHex(testRatingID)
	require.NoError(t, err)
	ratings := &fakeRatingRepository{ratings: map[string]models.Rating{
		testRatingID: {ID: ratingID, ProfileID: ratingOwner, BrandID: 1},
	}}
	comments := repositories.NewPostgresCommentRepository(db)
	likes := repositories.NewPostgresLikeRepository(db)
	profiles := repositories.NewPostgresProfileRepository(db)
	hub := realtime.NewHub(8, entry)

	service := services.NewNotificationService(
		entry,
		services.NewFanoutEngine(ratings, comments, profiles),
		services.NewSettingsGate(repositories.NewPostgresNotificationSettingsRepository(db)),
		repositories.NewPostgresNotificationRepository(db),
		profiles,
		hub,
		hub,
		services.Options{},
	)
	dispatcher := services.NewEventDispatcher(service, 0)

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.GET("/health", HealthCheck)
	api := e.Group("/api/v1", testAuth)
	NewLikeHandler(likes, ratings, dispatcher).RegisterLikeRoutes(api)
	NewCommentHandler(comments, ratings, dispatcher).RegisterCommentRoutes(api)
	NewNotificationHandler(service, entry, allowedOrigins).RegisterNotificationRoutes(api)

	return &testServer{e: e, db: db, dispatcher: dispatcher, service: service}
}

// do performs a request as profileID (0 = anonymous) and waits for any fan-out it started
func (s *testServer) do(t *testing.T, method, path string, profileID uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if profileID != 0 {
		req.Header.Set(profileHeader, strconv.FormatUint(uint64(profileID), 10))
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	s.dispatcher.Wait()
	return rec
}

type listResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Notifications []models.NotificationView `json:"notifications"`
		UnreadCount   int64                     `json:"unread_count"`
	} `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
