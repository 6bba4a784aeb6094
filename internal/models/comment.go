package models

import "gorm.io/gorm"

// RatingComment represents a comment on a rating
type RatingComment struct {
	gorm.Model
	RatingID  string `json:"rating_id" gorm:"size:24;index"` // ID of the rating (MongoDB ObjectID as string)
	ProfileID uint   `json:"profile_id" gorm:"index"`        // ID of the profile who made the comment
	Content   string `json:"content"`
}

// CreateCommentRequest defines the request body for commenting on a rating
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	Mentions []uint `json:"mentions,omitempty" validate:"omitempty,max=20,dive,gt=0"`
}
