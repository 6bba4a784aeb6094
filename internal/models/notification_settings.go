package models

// NotificationSettings holds a profile's per-type opt-outs (PostgreSQL).
// There is at most one row per profile; a missing row means every type is enabled.
type NotificationSettings struct {
	ID              uint `json:"-" gorm:"primaryKey"`
	ProfileID       uint `json:"profile_id" gorm:"not null;uniqueIndex"`
	NotifyOnLike    bool `json:"notify_on_like" gorm:"not null;default:true"`
	NotifyOnComment bool `json:"notify_on_comment" gorm:"not null;default:true"`
	NotifyOnReply   bool `json:"notify_on_reply" gorm:"not null;default:true"`
	NotifyOnMention bool `json:"notify_on_mention" gorm:"not null;default:true"`
}

// DefaultNotificationSettings returns the settings a profile starts with
func DefaultNotificationSettings(profileID uint) NotificationSettings {
	return NotificationSettings{
		ProfileID:       profileID,
		NotifyOnLike:    true,
		NotifyOnComment: true,
		NotifyOnReply:   true,
		NotifyOnMention: true,
	}
}

// Allows returns the flag matching t. Unknown types are allowed.
func (s NotificationSettings) Allows(t NotificationType) bool {
	switch t {
	case NotificationTypeLike:
		return s.NotifyOnLike
	case NotificationTypeComment:
		return s.NotifyOnComment
	case NotificationTypeReply:
		return s.NotifyOnReply
	case NotificationTypeMention:
		return s.NotifyOnMention
	}
	return true
}

// UpdateNotificationSettingsRequest is a partial update; nil fields are left unchanged
type UpdateNotificationSettingsRequest struct {
	NotifyOnLike    *bool `json:"notify_on_like,omitempty"`
	NotifyOnComment *bool `json:"notify_on_comment,omitempty"`
	NotifyOnReply   *bool `json:"notify_on_reply,omitempty"`
	NotifyOnMention *bool `json:"notify_on_mention,omitempty"`
}

// Columns returns the column updates carried by the request
func (r UpdateNotificationSettingsRequest) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if r.NotifyOnLike != nil {
		cols["notify_on_like"] = *r.NotifyOnLike
	}
	if r.NotifyOnComment != nil {
		cols["notify_on_comment"] = *r.NotifyOnComment
	}
	if r.NotifyOnReply != nil {
		cols["notify_on_reply"] = *r.NotifyOnReply
	}
	if r.NotifyOnMention != nil {
		cols["notify_on_mention"] = *r.NotifyOnMention
	}
	return cols
}
