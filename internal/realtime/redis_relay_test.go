package realtime

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelName(t *testing.T) {
	assert.Equal(t, "notifications:42", ChannelName(42))

	id, err := ParseChannelName(ChannelName(42))
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"notifications:", "notifications:abc", "notifications:0", "other:42"} {
		_, err := ParseChannelName(bad)
		assert.Error(t, err, bad)
	}
}

func TestRedisRelayRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	hub := NewHub(4, testLogger())
	relay := NewRedisRelay(client, hub, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = relay.Run(ctx) }()

	select {
	case <-relay.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not subscribe")
	}
	assert.True(t, relay.Listening())

	sub := hub.Subscribe(7)
	defer sub.Close()

	require.NoError(t, relay.Publish(ctx, 7, view("n-1", 7)))

	select {
	case n := <-sub.C():
		assert.Equal(t, "n-1", n.ID)
		assert.Equal(t, uint(2), n.Actor.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not relayed")
	}
}

// unreachableRedis returns a client whose every command fails fast
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRelayPublishFallsBackToHub(t *testing.T) {
	hub := NewHub(4, testLogger())
	relay := NewRedisRelay(unreachableRedis(t), hub, testLogger())

	sub := hub.Subscribe(7)
	defer sub.Close()

	assert.Error(t, relay.Publish(context.Background(), 7, view("n-1", 7)))
	require.Len(t, sub.C(), 1)
	assert.Equal(t, "n-1", (<-sub.C()).ID)
}

func TestRedisRelayRunRetriesUntilCancelled(t *testing.T) {
	relay := NewRedisRelay(unreachableRedis(t), NewHub(4, testLogger()), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
	assert.False(t, relay.Listening())

	select {
	case <-relay.Ready():
		t.Fatal("relay reported ready without redis")
	default:
	}
}
