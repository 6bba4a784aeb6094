package repositories

import (
	"context"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for rating like operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.RatingLike) error
	DeleteLike(ctx context.Context, ratingID string, profileID uint) error
	HasProfileLikedRating(ctx context.Context, ratingID string, profileID uint) (bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like in PostgreSQL
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.RatingLike) error {
	return models.NewStorageError("create like", r.db.WithContext(ctx).Create(like).Error)
}

// DeleteLike deletes a like, returning models.ErrNotFound when there was none
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, ratingID string, profileID uint) error {
	res := r.db.WithContext(ctx).Where("rating_id = ? AND profile_id = ?", ratingID, profileID).Delete(&models.RatingLike{})
	if res.Error != nil {
		return models.NewStorageError("delete like", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// HasProfileLikedRating checks if a profile currently likes a rating
func (r *PostgresLikeRepository) HasProfileLikedRating(ctx context.Context, ratingID string, profileID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RatingLike{}).
		Where("rating_id = ? AND profile_id = ?", ratingID, profileID).
		Count(&count).Error
	if err != nil {
		return false, models.NewStorageError("check like", err)
	}
	return count > 0, nil
}
