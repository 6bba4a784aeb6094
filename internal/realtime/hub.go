// Package realtime delivers newly created notifications to viewers that are
// connected right now. It is a change feed, not a queue: nothing is retained
// for recipients without a live subscription.
package realtime

import (
	"context"
	"sync"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultBufferSize is the per-subscription backlog kept for a slow reader.
const DefaultBufferSize = 32

// Hub keeps the live subscriptions of this process, grouped by recipient.
type Hub struct {
	mu         sync.RWMutex
	subs       map[uint]map[*Subscription]struct{}
	bufferSize int
	log        *logrus.Entry
}

// NewHub creates an empty hub. bufferSize <= 0 selects DefaultBufferSize.
func NewHub(bufferSize int, log *logrus.Entry) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subs:       make(map[uint]map[*Subscription]struct{}),
		bufferSize: bufferSize,
		log:        log.WithField("component", "realtime_hub"),
	}
}

// Subscribe opens a subscription for recipientID. The caller owns it and must Close it.
func (h *Hub) Subscribe(recipientID uint) *Subscription {
	sub := &Subscription{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		ch:          make(chan models.NotificationView, h.bufferSize),
		hub:         h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[recipientID] == nil {
		h.subs[recipientID] = make(map[*Subscription]struct{})
	}
	h.subs[recipientID][sub] = struct{}{}

	h.log.WithFields(logrus.Fields{"recipient_id": recipientID, "subscription_id": sub.ID}).Debug("subscription opened")
	return sub
}

// Publish hands n to every live subscription of recipientID without blocking.
// A full subscription buffer drops the event for that subscription only.
func (h *Hub) Publish(_ context.Context, recipientID uint, n models.NotificationView) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[recipientID] {
		select {
		case sub.ch <- n:
		default:
			h.log.WithFields(logrus.Fields{
				"recipient_id":    recipientID,
				"subscription_id": sub.ID,
				"notification_id": n.ID,
			}).Warn("subscription buffer full, dropping live notification")
		}
	}
	return nil
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.subs[sub.RecipientID]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.RecipientID)
	}
	// Publish only sends while holding the read lock, so closing here is safe.
	close(sub.ch)

	h.log.WithFields(logrus.Fields{"recipient_id": sub.RecipientID, "subscription_id": sub.ID}).Debug("subscription closed")
}
