package repositories

import (
	"context"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for rating comment operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.RatingComment) error
	GetCommenterIDs(ctx context.Context, ratingID string) ([]uint, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.RatingComment) error {
	return models.NewStorageError("create comment", r.db.WithContext(ctx).Create(comment).Error)
}

// GetCommenterIDs returns the distinct profiles that have a live comment on the rating
func (r *PostgresCommentRepository) GetCommenterIDs(ctx context.Context, ratingID string) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.db.WithContext(ctx).Model(&models.RatingComment{}).
		Where("rating_id = ?", ratingID).
		Distinct().
		Pluck("profile_id", &ids).Error
	if err != nil {
		return nil, models.NewStorageError("list commenters", err)
	}
	return ids, nil
}
