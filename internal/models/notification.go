package models

import "time"

// NotificationType identifies why a notification was created
type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
	NotificationTypeMention NotificationType = "mention"
)

// Valid reports whether t is one of the known notification types
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeLike, NotificationTypeComment, NotificationTypeReply, NotificationTypeMention:
		return true
	}
	return false
}

// Notification is a single notification owned by its recipient (PostgreSQL).
// Only IsRead changes after insertion, and only from false to true.
type Notification struct {
	ID               string           `json:"id" gorm:"primaryKey;size:36"`
	Type             NotificationType `json:"type" gorm:"size:20;not null"`
	RecipientID      uint             `json:"recipient_id" gorm:"not null;index:idx_notifications_recipient_created,priority:1"`
	ActorID          uint             `json:"actor_id" gorm:"not null;index"`
	SubjectRatingID  string           `json:"rating_id" gorm:"size:24;not null"`
	SubjectCommentID *uint            `json:"comment_id,omitempty"`
	IsRead           bool             `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt        time.Time        `json:"created_at" gorm:"not null;index:idx_notifications_recipient_created,priority:2,sort:desc"`
}

// ActorSummary is the display metadata of the profile that triggered a notification
type ActorSummary struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// NotificationView is a notification hydrated with its actor, as returned to viewers
type NotificationView struct {
	Notification
	Actor ActorSummary `json:"actor"`
}
