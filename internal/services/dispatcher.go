package services

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/models"
)

const DefaultFanoutTimeout = 10 * time.Second

type socialEventHandler interface {
	OnSocialEvent(ctx context.Context, ev models.SocialEvent) FanoutResult
}

// EventDispatcher runs fan-out in the background so the social action that raised
// the event completes without waiting for, or depending on, notification delivery.
type EventDispatcher struct {
	handler socialEventHandler
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewEventDispatcher creates a dispatcher. timeout <= 0 selects DefaultFanoutTimeout.
func NewEventDispatcher(handler socialEventHandler, timeout time.Duration) *EventDispatcher {
	if timeout <= 0 {
		timeout = DefaultFanoutTimeout
	}
	return &EventDispatcher{handler: handler, timeout: timeout}
}

// Dispatch starts fan-out for ev. The work outlives ctx's cancellation but keeps its values.
func (d *EventDispatcher) Dispatch(ctx context.Context, ev models.SocialEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		d.handler.OnSocialEvent(ctx, ev)
	}()
}

// Wait blocks until every dispatched fan-out has finished.
func (d *EventDispatcher) Wait() {
	d.wg.Wait()
}
