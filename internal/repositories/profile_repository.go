package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the read-only profile lookups used by this service
type ProfileRepository interface {
	GetProfileByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.Profile, error)
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// GetProfileByFirebaseUID retrieves a profile by Firebase UID from PostgreSQL
func (r *PostgresProfileRepository) GetProfileByFirebaseUID(ctx context.Context, firebaseUID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&profile).Error; err != nil {
		return nil, translateNotFound("get profile by firebase uid", err)
	}
	return &profile, nil
}

// GetProfilesByIDs retrieves every existing profile among ids; missing ones are skipped
func (r *PostgresProfileRepository) GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, models.NewStorageError("list profiles", err)
	}
	return profiles, nil
}

func translateNotFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return models.NewStorageError(op, err)
}
