package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisOrSkip(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestChannels(t *testing.T) {
	got := Channels(&SwapEvent{Pair: "SOL-USDC"})
	assert.Equal(t, []string{"fartswap:swaps", "fartswap:swaps:pair:SOL-USDC"}, got)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.PublishSwap(context.Background(), &SwapEvent{}))
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	client := redisOrSkip(t)
	l := logrus.New()
	l.SetOutput(io.Discard)
	pub := NewRedisPublisher(client, l)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan *SwapEvent, 1)
	go func() {
		_ = pub.Subscribe(ctx, "fartswap:swaps:pair:SOL-FARTSWAP", func(ev *SwapEvent) {
			select {
			case got <- ev:
			default:
			}
		})
	}()

	// Publish until the subscriber is attached.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		require.NoError(t, pub.PublishSwap(ctx, &SwapEvent{Signature: "sig1", Pair: "SOL-FARTSWAP", Status: "confirmed"}))
		select {
		case ev := <-got:
			assert.Equal(t, "sig1", ev.Signature)
			assert.Equal(t, "confirmed", ev.Status)
			return
		case <-ctx.Done():
			t.Fatal("event not delivered")
		case <-tick.C:
		}
	}
}

func TestRedisPublisher_Recent(t *testing.T) {
	client := redisOrSkip(t)
	ctx := context.Background()
	require.NoError(t, client.Del(ctx, "fartswap:swaps:recent").Err())
	t.Cleanup(func() { _ = client.Del(context.Background(), "fartswap:swaps:recent").Err() })

	l := logrus.New()
	l.SetOutput(io.Discard)
	pub := NewRedisPublisher(client, l)

	for _, sig := range []string{"a", "b", "c"} {
		require.NoError(t, pub.PublishSwap(ctx, &SwapEvent{Signature: sig, Pair: "SOL-FARTSWAP"}))
	}

	got, err := pub.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Signature)
	assert.Equal(t, "b", got[1].Signature)
}
