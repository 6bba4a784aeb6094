package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "notifications:"

const (
	relayRetryInitial = 500 * time.Millisecond
	relayRetryMax     = 30 * time.Second
)

// RedisRelay fans live notifications out across service instances. Publish goes
// to redis; Listen feeds whatever arrives from redis into the local hub, so a
// viewer connected to any instance receives notifications created on any other.
// While the relay is not subscribed, Publish also delivers to the local hub.
type RedisRelay struct {
	client    *redis.Client
	hub       *Hub
	log       *logrus.Entry
	ready     chan struct{}
	readyOnce sync.Once
	listening atomic.Bool
}

// NewRedisRelay creates a relay that delivers into hub.
func NewRedisRelay(client *redis.Client, hub *Hub, log *logrus.Entry) *RedisRelay {
	return &RedisRelay{
		client: client,
		hub:    hub,
		log:    log.WithField("component", "redis_relay"),
		ready:  make(chan struct{}),
	}
}

// Publish sends n on the recipient's redis channel. When this instance is not
// subscribed, local subscribers get n straight from the hub instead.
func (r *RedisRelay) Publish(ctx context.Context, recipientID uint, n models.NotificationView) error {
	if !r.listening.Load() {
		_ = r.hub.Publish(ctx, recipientID, n)
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode live notification: %w", err)
	}
	if err := r.client.Publish(ctx, ChannelName(recipientID), payload).Err(); err != nil {
		return fmt.Errorf("publish live notification: %w", err)
	}
	return nil
}

// Ready is closed once a pattern subscription is first confirmed by redis.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Listening reports whether the relay currently holds a confirmed subscription.
func (r *RedisRelay) Listening() bool {
	return r.listening.Load()
}

// Run keeps the relay subscribed until ctx is cancelled, resubscribing with
// exponential backoff whenever subscribing fails or the subscription drops.
func (r *RedisRelay) Run(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = relayRetryInitial
	policy.MaxInterval = relayRetryMax
	policy.MaxElapsedTime = 0

	err := backoff.RetryNotify(func() error {
		subscribed, err := r.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			policy.Reset()
		}
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		r.log.WithError(err).WithField("retry_in", wait.String()).Warn("redis relay unavailable, retrying")
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Listen subscribes to every recipient channel and forwards messages to the hub
// until ctx is cancelled or the subscription ends. Use Run to keep it alive.
func (r *RedisRelay) Listen(ctx context.Context) error {
	_, err := r.listen(ctx)
	return err
}

func (r *RedisRelay) listen(ctx context.Context) (subscribed bool, err error) {
	pubsub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe to notification channels: %w", err)
	}
	r.listening.Store(true)
	defer r.listening.Store(false)
	r.readyOnce.Do(func() { close(r.ready) })
	r.log.Info("listening for live notifications")

	messages := pubsub.Channel(redis.WithChannelSize(r.hub.bufferSize))
	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-messages:
			if !ok {
				return true, errors.New("notification subscription closed")
			}
			r.forward(ctx, msg)
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context, msg *redis.Message) {
	recipientID, err := ParseChannelName(msg.Channel)
	if err != nil {
		r.log.WithError(err).WithField("channel", msg.Channel).Warn("ignoring message on unexpected channel")
		return
	}

	var n models.NotificationView
	if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
		r.log.WithError(err).WithField("channel", msg.Channel).Warn("ignoring undecodable live notification")
		return
	}

	_ = r.hub.Publish(ctx, recipientID, n)
}

// ChannelName is the redis channel carrying live notifications for recipientID.
func ChannelName(recipientID uint) string {
	return channelPrefix + strconv.FormatUint(uint64(recipientID), 10)
}

// ParseChannelName extracts the recipient id from a ChannelName result.
func ParseChannelName(channel string) (uint, error) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, fmt.Errorf("channel %q has no %q prefix", channel, channelPrefix)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("channel %q has no valid recipient id", channel)
	}
	return uint(id), nil
}
