package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/anonto42/rating-notify/backend/internal/realtime"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultFanoutConcurrency = 4

type notificationStore interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, recipientID uint, notificationID string) error
	MarkAllAsRead(ctx context.Context, recipientID uint) error
}

type profileStore interface {
	GetProfilesByIDs(ctx context.Context, ids []uint) ([]models.Profile, error)
}

// Publisher pushes a stored notification to the recipient's live subscriptions.
type Publisher interface {
	Publish(ctx context.Context, recipientID uint, n models.NotificationView) error
}

// Subscriber opens live subscriptions.
type Subscriber interface {
	Subscribe(recipientID uint) *realtime.Subscription
}

// Options tunes a NotificationService. Zero values select defaults.
type Options struct {
	FanoutConcurrency int
	Now               func() time.Time
}

// NotificationService turns social events into stored, delivered notifications
// and serves the viewer-facing read side.
type NotificationService struct {
	fanout      *FanoutEngine
	gate        *SettingsGate
	store       notificationStore
	profiles    profileStore
	publisher   Publisher
	subscriber  Subscriber
	concurrency int
	now         func() time.Time
	log         *logrus.Entry

	// serializes insert and publish per recipient so live delivery follows insertion order
	recipients *recipientLocks
}

// NewNotificationService wires the fan-out pipeline together.
func NewNotificationService(
	log *logrus.Entry,
	fanout *FanoutEngine,
	gate *SettingsGate,
	store notificationStore,
	profiles profileStore,
	publisher Publisher,
	subscriber Subscriber,
	opts Options,
) *NotificationService {
	if opts.FanoutConcurrency <= 0 {
		opts.FanoutConcurrency = DefaultFanoutConcurrency
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &NotificationService{
		fanout:      fanout,
		gate:        gate,
		store:       store,
		profiles:    profiles,
		publisher:   publisher,
		subscriber:  subscriber,
		concurrency: opts.FanoutConcurrency,
		now:         opts.Now,
		log:         log.WithField("component", "notification_service"),
		recipients:  newRecipientLocks(),
	}
}

// FanoutResult describes what one social event produced.
type FanoutResult struct {
	Candidates []Candidate
	Created    []models.Notification
	Suppressed []Candidate
	Failures   []models.RecipientFailure
	// Err is set when recipients could not be resolved, or to a
	// *models.PartialFanoutError when some recipients failed.
	Err error
}

// OnSocialEvent notifies everyone ev concerns. It never reports failure to the
// caller's action: problems are logged and returned in the result for inspection.
func (s *NotificationService) OnSocialEvent(ctx context.Context, ev models.SocialEvent) FanoutResult {
	log := s.log.WithFields(logrus.Fields{
		"event":     ev.Kind,
		"actor_id":  ev.ActorID,
		"rating_id": ev.RatingID,
	})

	if ev.ActorID == 0 {
		log.Warn("social event without actor, skipping fan-out")
		return FanoutResult{Err: models.ErrPermission}
	}

	candidates, err := s.fanout.Candidates(ctx, ev)
	if err != nil {
		log.WithError(err).Error("failed to resolve notification recipients")
		return FanoutResult{Err: err}
	}
	result := FanoutResult{Candidates: candidates}
	if len(candidates) == 0 {
		return result
	}

	actor := s.actorSummaries(ctx, []uint{ev.ActorID})[ev.ActorID]

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, c := range candidates {
		g.Go(func() error {
			n, delivered, err := s.notifyCandidate(ctx, ev, c, actor)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.WithError(err).WithFields(logrus.Fields{
					"recipient_id": c.RecipientID,
					"type":         c.Type,
				}).Error("failed to notify recipient")
				result.Failures = append(result.Failures, models.RecipientFailure{RecipientID: c.RecipientID, Type: c.Type, Err: err})
			case !delivered:
				result.Suppressed = append(result.Suppressed, c)
			default:
				result.Created = append(result.Created, *n)
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(result.Created, func(a, b models.Notification) int { return cmp.Compare(a.RecipientID, b.RecipientID) })
	if len(result.Failures) > 0 {
		result.Err = &models.PartialFanoutError{Failures: result.Failures}
	}

	log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"created":    len(result.Created),
		"suppressed": len(result.Suppressed),
		"failed":     len(result.Failures),
	}).Info("social event fanned out")
	return result
}

// notifyCandidate stores and publishes one notification. delivered is false when the
// recipient opted out of the type.
func (s *NotificationService) notifyCandidate(ctx context.Context, ev models.SocialEvent, c Candidate, actor models.ActorSummary) (*models.Notification, bool, error) {
	if !c.Type.Valid() {
		return nil, false, fmt.Errorf("unknown notification type %q", c.Type)
	}
	enabled, err := s.gate.IsEnabled(ctx, c.RecipientID, c.Type)
	if err != nil {
		return nil, false, err
	}
	if !enabled {
		return nil, false, nil
	}

	// Concurrent events for the same recipient must not reorder between insert and publish
	unlock := s.recipients.lock(c.RecipientID)
	defer unlock()

	n := &models.Notification{
		Type:            c.Type,
		RecipientID:     c.RecipientID,
		ActorID:         ev.ActorID,
		SubjectRatingID: ev.RatingID,
		CreatedAt:       s.now(),
	}
	if c.Type != models.NotificationTypeLike && ev.CommentID != nil {
		commentID := *ev.CommentID
		n.SubjectCommentID = &commentID
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, false, err
	}

	// The row is durable at this point; a failed push only costs the live update.
	view := models.NotificationView{Notification: *n, Actor: actor}
	if err := s.publisher.Publish(ctx, n.RecipientID, view); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"recipient_id":    n.RecipientID,
			"notification_id": n.ID,
		}).Warn("failed to publish live notification")
	}
	return n, true, nil
}

// FetchNotifications returns the viewer's newest notifications with actor details.
func (s *NotificationService) FetchNotifications(ctx context.Context, profileID uint, limit int) ([]models.NotificationView, error) {
	if profileID == 0 {
		return nil, models.ErrPermission
	}
	notifications, err := s.store.GetByRecipientID(ctx, profileID, limit)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, notifications), nil
}

// UnreadCount returns the number of unread notifications of the viewer.
func (s *NotificationService) UnreadCount(ctx context.Context, profileID uint) (int64, error) {
	if profileID == 0 {
		return 0, models.ErrPermission
	}
	return s.store.GetUnreadCount(ctx, profileID)
}

// MarkAsRead marks one notification read, or all of them when notificationID is empty,
// and returns the unread count afterwards. Ids that are unknown or belong to someone
// else change nothing.
func (s *NotificationService) MarkAsRead(ctx context.Context, profileID uint, notificationID string) (int64, error) {
	if profileID == 0 {
		return 0, models.ErrPermission
	}

	var err error
	if notificationID == "" {
		err = s.store.MarkAllAsRead(ctx, profileID)
	} else {
		err = s.store.MarkAsRead(ctx, profileID, notificationID)
	}
	if err != nil {
		return 0, err
	}
	return s.store.GetUnreadCount(ctx, profileID)
}

// FetchSettings returns the viewer's settings, creating defaults on first access.
func (s *NotificationService) FetchSettings(ctx context.Context, profileID uint) (*models.NotificationSettings, error) {
	if profileID == 0 {
		return nil, models.ErrPermission
	}
	return s.gate.GetOrCreate(ctx, profileID)
}

// UpdateSettings applies a partial settings update for the viewer.
func (s *NotificationService) UpdateSettings(ctx context.Context, profileID uint, req models.UpdateNotificationSettingsRequest) (*models.NotificationSettings, error) {
	if profileID == 0 {
		return nil, models.ErrPermission
	}
	return s.gate.Update(ctx, profileID, req)
}

// Subscribe opens the viewer's live feed. Only notifications created after this call
// are delivered on it; callers catch up with FetchNotifications afterwards.
func (s *NotificationService) Subscribe(_ context.Context, profileID uint) (*realtime.Subscription, error) {
	if profileID == 0 {
		return nil, models.ErrPermission
	}
	return s.subscriber.Subscribe(profileID), nil
}

func (s *NotificationService) hydrate(ctx context.Context, notifications []models.Notification) []models.NotificationView {
	actorIDs := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		if !slices.Contains(actorIDs, n.ActorID) {
			actorIDs = append(actorIDs, n.ActorID)
		}
	}
	actors := s.actorSummaries(ctx, actorIDs)

	views := make([]models.NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = models.NotificationView{Notification: n, Actor: actors[n.ActorID]}
	}
	return views
}

// actorSummaries always returns an entry per id; profiles that cannot be loaded
// are reduced to their id.
func (s *NotificationService) actorSummaries(ctx context.Context, ids []uint) map[uint]models.ActorSummary {
	summaries := make(map[uint]models.ActorSummary, len(ids))
	for _, id := range ids {
		summaries[id] = models.ActorSummary{ID: id}
	}
	if len(ids) == 0 {
		return summaries
	}

	profiles, err := s.profiles.GetProfilesByIDs(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("failed to load actor profiles")
		return summaries
	}
	for _, p := range profiles {
		summaries[p.ID] = p.ToActor()
	}
	return summaries
}
