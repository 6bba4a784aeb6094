package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationSettingsRepository defines the interface for notification settings operations
type NotificationSettingsRepository interface {
	GetByProfileID(ctx context.Context, profileID uint) (*models.NotificationSettings, error)
	CreateDefault(ctx context.Context, profileID uint) error
	Update(ctx context.Context, profileID uint, columns map[string]any) error
}

type postgresNotificationSettingsRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationSettingsRepository(db *gorm.DB) NotificationSettingsRepository {
	return &postgresNotificationSettingsRepository{db: db}
}

// GetByProfileID returns models.ErrNotFound when the profile has no settings row
func (r *postgresNotificationSettingsRepository) GetByProfileID(ctx context.Context, profileID uint) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Take(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, models.NewStorageError("get notification settings", err)
	}
	return &settings, nil
}

// CreateDefault inserts the default row. A row that already exists, including one
// created concurrently, is left untouched.
func (r *postgresNotificationSettingsRepository) CreateDefault(ctx context.Context, profileID uint) error {
	settings := models.DefaultNotificationSettings(profileID)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "profile_id"}}, DoNothing: true}).
		Create(&settings).Error
	return models.NewStorageError("create notification settings", err)
}

func (r *postgresNotificationSettingsRepository) Update(ctx context.Context, profileID uint, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.NotificationSettings{}).
		Where("profile_id = ?", profileID).
		Updates(columns).Error
	return models.NewStorageError("update notification settings", err)
}
