package models

// SocialEventKind is the kind of social action that may produce notifications
type SocialEventKind string

const (
	SocialEventLike    SocialEventKind = "like"
	SocialEventComment SocialEventKind = "comment"
	SocialEventMention SocialEventKind = "mention"
)

// SocialEvent is raised by the rating/comment feature after the action itself was saved
type SocialEvent struct {
	Kind      SocialEventKind
	ActorID   uint
	RatingID  string
	CommentID *uint
	// MentionedIDs is only read for SocialEventMention
	MentionedIDs []uint
}

// NewLikeEvent builds the event for actorID liking ratingID
func NewLikeEvent(actorID uint, ratingID string) SocialEvent {
	return SocialEvent{Kind: SocialEventLike, ActorID: actorID, RatingID: ratingID}
}

// NewCommentEvent builds the event for actorID posting commentID on ratingID
func NewCommentEvent(actorID uint, ratingID string, commentID uint) SocialEvent {
	return SocialEvent{Kind: SocialEventComment, ActorID: actorID, RatingID: ratingID, CommentID: &commentID}
}

// NewMentionEvent builds the event for actorID mentioning profiles in commentID
func NewMentionEvent(actorID uint, ratingID string, commentID uint, mentioned []uint) SocialEvent {
	return SocialEvent{
		Kind:         SocialEventMention,
		ActorID:      actorID,
		RatingID:     ratingID,
		CommentID:    &commentID,
		MentionedIDs: mentioned,
	}
}
