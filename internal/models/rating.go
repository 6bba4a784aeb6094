package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a flavor rating of a sake brand stored in MongoDB
type Rating struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProfileID uint               `json:"profile_id" bson:"profile_id"` // Owner of the rating
	BrandID   int                `json:"brand_id" bson:"brand_id"`
	Flavor    FlavorChart        `json:"flavor" bson:"flavor"`
	Note      string             `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// FlavorChart is the six-axis flavor score of a rating
type FlavorChart struct {
	Hanayaka float64 `json:"f1_hanayaka" bson:"f1_hanayaka"`
	Houjun   float64 `json:"f2_houjun" bson:"f2_houjun"`
	Juukou   float64 `json:"f3_juukou" bson:"f3_juukou"`
	Odayaka  float64 `json:"f4_odayaka" bson:"f4_odayaka"`
	Dry      float64 `json:"f5_dry" bson:"f5_dry"`
	Keikai   float64 `json:"f6_keikai" bson:"f6_keikai"`
}
