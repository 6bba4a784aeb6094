package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Profile is a user of the rating feature (PostgreSQL). Profiles are managed elsewhere;
// this service only reads them to resolve identities and actor display data.
type Profile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Email       string    `json:"email,omitempty" gorm:"uniqueIndex"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt   time.Time `json:"created_at"`
}

// ToActor returns the compact form embedded in notifications
func (p Profile) ToActor() ActorSummary {
	return ActorSummary{ID: p.ID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	ProfileID uint   `json:"profile_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
