package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

type ratingOwnerLookup interface {
	GetOwnerID(ctx context.Context, ratingID string) (uint, error)
}

type commenterLookup interface {
	GetCommenterIDs(ctx context.Context, ratingID string) ([]uint, error)
}

type profileLookup interface {
	GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.Profile, error)
}

// Candidate is one (recipient, type) pair proposed for a social event.
type Candidate struct {
	RecipientID uint
	Type        models.NotificationType
}

// FanoutEngine maps a social event to the recipients that should hear about it.
// The result depends only on the event and the current ownership and comment
// authorship of the rating; notification history is never consulted.
type FanoutEngine struct {
	ratings  ratingOwnerLookup
	comments commenterLookup
	profiles profileLookup
}

// NewFanoutEngine creates a FanoutEngine.
func NewFanoutEngine(ratings ratingOwnerLookup, comments commenterLookup, profiles profileLookup) *FanoutEngine {
	return &FanoutEngine{ratings: ratings, comments: comments, profiles: profiles}
}

// Candidates returns the distinct candidates for ev. The actor is never a candidate,
// and a rating that no longer exists yields none.
func (e *FanoutEngine) Candidates(ctx context.Context, ev models.SocialEvent) ([]Candidate, error) {
	switch ev.Kind {
	case models.SocialEventLike:
		return e.likeCandidates(ctx, ev)
	case models.SocialEventComment:
		return e.commentCandidates(ctx, ev)
	case models.SocialEventMention:
		return e.mentionCandidates(ctx, ev)
	default:
		return nil, fmt.Errorf("unknown social event kind %q", ev.Kind)
	}
}

func (e *FanoutEngine) likeCandidates(ctx context.Context, ev models.SocialEvent) ([]Candidate, error) {
	ownerID, err := e.ratings.GetOwnerID(ctx, ev.RatingID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ownerID == ev.ActorID {
		return nil, nil
	}
	return []Candidate{{RecipientID: ownerID, Type: models.NotificationTypeLike}}, nil
}

func (e *FanoutEngine) commentCandidates(ctx context.Context, ev models.SocialEvent) ([]Candidate, error) {
	var (
		ownerID    uint
		commenters []uint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ownerID, err = e.ratings.GetOwnerID(gctx, ev.RatingID)
		return err
	})
	g.Go(func() error {
		var err error
		commenters, err = e.comments.GetCommenterIDs(gctx, ev.RatingID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	candidates := make([]Candidate, 0, len(commenters)+1)
	if ownerID != ev.ActorID {
		candidates = append(candidates, Candidate{RecipientID: ownerID, Type: models.NotificationTypeComment})
	}

	// The owner is covered by the primary candidate (or is the actor); either way
	// they never also get a reply for the same event.
	seen := map[uint]struct{}{ev.ActorID: {}, ownerID: {}}
	replies := make([]uint, 0, len(commenters))
	for _, id := range commenters {
		if _, dup := seen[id]; dup || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		replies = append(replies, id)
	}
	slices.Sort(replies)
	for _, id := range replies {
		candidates = append(candidates, Candidate{RecipientID: id, Type: models.NotificationTypeReply})
	}
	return candidates, nil
}

// mentionCandidates keeps the mentioned ids that belong to an existing profile,
// in the order they were mentioned.
func (e *FanoutEngine) mentionCandidates(ctx context.Context, ev models.SocialEvent) ([]Candidate, error) {
	seen := map[uint]struct{}{ev.ActorID: {}}
	mentioned := make([]uint, 0, len(ev.MentionedIDs))
	for _, id := range ev.MentionedIDs {
		if _, dup := seen[id]; dup || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		mentioned = append(mentioned, id)
	}
	if len(mentioned) == 0 {
		return nil, nil
	}

	profiles, err := e.profiles.GetProfilesByIDs(ctx, mentioned)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]struct{}, len(profiles))
	for _, p := range profiles {
		known[p.ID] = struct{}{}
	}

	candidates := make([]Candidate, 0, len(mentioned))
	for _, id := range mentioned {
		if _, ok := known[id]; ok {
			candidates = append(candidates, Candidate{RecipientID: id, Type: models.NotificationTypeMention})
		}
	}
	return candidates, nil
}
