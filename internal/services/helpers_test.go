package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/anonto42/rating-notify/backend/internal/realtime"
	"github.com/anonto42/rating-notify/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
		&models.Notification{},
		&models.NotificationSettings{},
	))
	return db
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// stepClock returns strictly increasing timestamps so ordering by created_at is deterministic
func stepClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type serviceFixture struct {
	db            *gorm.DB
	ratings       *fakeRatings
	comments      *repositories.PostgresCommentRepository
	notifications repositories.NotificationRepository
	settings      *SettingsGate
	hub           *realtime.Hub
	service       *NotificationService
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	store     notificationStore
	publisher Publisher
	settings  settingsRepo
}

func withStore(wrap func(notificationStore) notificationStore) fixtureOption {
	return func(c *fixtureConfig) { c.store = wrap(c.store) }
}

func withPublisher(p Publisher) fixtureOption {
	return func(c *fixtureConfig) { c.publisher = p }
}

func withSettingsRepo(wrap func(settingsRepo) settingsRepo) fixtureOption {
	return func(c *fixtureConfig) { c.settings = wrap(c.settings) }
}

// newServiceFixture wires a service over sqlite with rating ratingR owned by profile 2
func newServiceFixture(t *testing.T, opts ...fixtureOption) *serviceFixture {
	t.Helper()

	db := newTestDB(t)
	f := &serviceFixture{
		db:            db,
		ratings:       &fakeRatings{owners: map[string]uint{ratingR: 2}},
		comments:      repositories.NewPostgresCommentRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
		hub:           realtime.NewHub(16, testLogger()),
	}

	cfg := &fixtureConfig{
		store:     f.notifications,
		publisher: f.hub,
		settings:  repositories.NewPostgresNotificationSettingsRepository(db),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	f.settings = NewSettingsGate(cfg.settings)

	for id := uint(1); id <= 5; id++ {
		require.NoError(t, db.Create(&models.Profile{
			ID:          id,
			DisplayName: fmt.Sprintf("profile-%d", id),
			Email:       fmt.Sprintf("profile-%d@example.com", id),
		}).Error)
	}

	profiles := repositories.NewPostgresProfileRepository(db)
	f.service = NewNotificationService(
		testLogger(),
		NewFanoutEngine(f.ratings, f.comments, profiles),
		f.settings,
		cfg.store,
		profiles,
		cfg.publisher,
		f.hub,
		Options{FanoutConcurrency: 2, Now: stepClock()},
	)
	return f
}

func (f *serviceFixture) comment(t *testing.T, profileID uint) {
	t.Helper()
	require.NoError(t, f.comments.CreateComment(context.Background(), &models.RatingComment{
		RatingID:  ratingR,
		ProfileID: profileID,
		Content:   "earlier comment",
	}))
}

func (f *serviceFixture) unread(t *testing.T, profileID uint) int64 {
	t.Helper()
	count, err := f.service.UnreadCount(context.Background(), profileID)
	require.NoError(t, err)
	return count
}

// storedUnread counts unread rows directly, independent of the service
func (f *serviceFixture) storedUnread(t *testing.T, profileID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", profileID, false).
		Count(&count).Error)
	return count
}
