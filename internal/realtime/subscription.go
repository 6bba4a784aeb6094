package realtime

import (
	"sync"

	"github.com/anonto42/rating-notify/backend/internal/models"
)

// Subscription is one viewer session's live feed for a single recipient.
// Notifications arrive on C in the order they were published.
type Subscription struct {
	ID          string
	RecipientID uint

	ch        chan models.NotificationView
	hub       *Hub
	closeOnce sync.Once
}

// C returns the delivery channel. It is closed when the subscription is closed.
func (s *Subscription) C() <-chan models.NotificationView {
	return s.ch
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s)
	})
}
