package repositories

import (
	"context"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 50
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, recipientID uint, notificationID string) error
	MarkAllAsRead(ctx context.Context, recipientID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// CreateNotification inserts a new unread notification, filling in ID and CreatedAt when unset
func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	notification.IsRead = false

	return models.NewStorageError("create notification", r.db.WithContext(ctx).Create(notification).Error)
}

// GetByRecipientID returns up to limit notifications for the recipient, newest first
func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Limit(NormalizeLimit(limit)).
		Find(&notifications).Error
	if err != nil {
		return nil, models.NewStorageError("list notifications", err)
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, models.NewStorageError("count unread notifications", err)
}

// MarkAsRead marks one notification read. Unknown ids and ids owned by another
// recipient match no rows and are not an error.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, recipientID uint, notificationID string) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", notificationID, recipientID, false).
		Update("is_read", true).Error
	return models.NewStorageError("mark notification read", err)
}

// MarkAllAsRead marks every unread notification of the recipient read in a single statement
func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	return models.NewStorageError("mark all notifications read", err)
}

// NormalizeLimit clamps a requested page size to [1, MaxNotificationLimit], defaulting to DefaultNotificationLimit
func NormalizeLimit(limit int) int {
	if limit < 1 {
		return DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		return MaxNotificationLimit
	}
	return limit
}
