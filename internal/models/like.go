package models

import "gorm.io/gorm"

// RatingLike represents a like on a rating
type RatingLike struct {
	gorm.Model
	RatingID  string `json:"rating_id" gorm:"size:24;index"` // ID of the rating that was liked (MongoDB ObjectID as string)
	ProfileID uint   `json:"profile_id" gorm:"index"`        // ID of the profile who liked the rating
}
