package repositories

import (
	"fmt"
	"testing"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
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
	return db
}

func createProfile(t *testing.T, db *gorm.DB, id uint, name string) models.Profile {
	t.Helper()
	profile := models.Profile{ID: id, DisplayName: name, Email: fmt.Sprintf("%s@example.com", name)}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}
