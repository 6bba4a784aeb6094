package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RatingRepository defines the read operations on ratings needed here
type RatingRepository interface {
	GetRatingByID(ctx context.Context, id string) (*models.Rating, error)
	GetOwnerID(ctx context.Context, id string) (uint, error)
}

// MongoRatingRepository implements RatingRepository for MongoDB
type MongoRatingRepository struct {
	collection *mongo.Collection
}

// NewMongoRatingRepository creates a new MongoRatingRepository
func NewMongoRatingRepository(db *mongo.Database) *MongoRatingRepository {
	return &MongoRatingRepository{collection: db.Collection("ratings")}
}

// GetRatingByID retrieves a rating by ID. Malformed and unknown IDs both yield models.ErrNotFound.
func (r *MongoRatingRepository) GetRatingByID(ctx context.Context, id string) (*models.Rating, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rating ID format: %w", models.ErrNotFound)
	}

	var rating models.Rating
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&rating); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, models.NewStorageError("get rating", err)
	}
	return &rating, nil
}

// GetOwnerID returns the profile that owns the rating, fetching only that field
func (r *MongoRatingRepository) GetOwnerID(ctx context.Context, id string) (uint, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("invalid rating ID format: %w", models.ErrNotFound)
	}

	var owner struct {
		ProfileID uint `bson:"profile_id"`
	}
	opts := options.FindOne().SetProjection(bson.M{"profile_id": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}, opts).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, models.ErrNotFound
		}
		return 0, models.NewStorageError("get rating owner", err)
	}
	return owner.ProfileID, nil
}
