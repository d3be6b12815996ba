package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/constants"
)

// RedisPublisher fans swap events out over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisPublisher(client *redis.Client, logger *logrus.Logger) *RedisPublisher {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisPublisher{client: client, logger: logger}
}

// Channels lists where an event is published: the global channel and the
// pair channel.
func Channels(ev *SwapEvent) []string {
	return []string{
		constants.PubSubChannelSwaps,
		constants.PubSubChannelPrefix + ev.Pair,
	}
}

func (p *RedisPublisher) PublishSwap(ctx context.Context, ev *SwapEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal swap event: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.LPush(ctx, constants.RecentSwapsKey, data)
	pipe.LTrim(ctx, constants.RecentSwapsKey, 0, constants.RecentSwapsMax-1)
	for _, channel := range Channels(ev) {
		pipe.Publish(ctx, channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish swap event: %w", err)
	}
	return nil
}

// Recent returns up to limit of the latest published events, newest first.
func (p *RedisPublisher) Recent(ctx context.Context, limit int64) ([]*SwapEvent, error) {
	if limit <= 0 || limit > constants.RecentSwapsMax {
		limit = constants.RecentSwapsMax
	}
	raw, err := p.client.LRange(ctx, constants.RecentSwapsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent swaps: %w", err)
	}
	out := make([]*SwapEvent, 0, len(raw))
	for _, r := range raw {
		var ev SwapEvent
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			p.logger.WithError(err).Warn("skipping undecodable recent swap")
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}

// Subscribe delivers events from channel until ctx is done. Undecodable
// messages are logged and skipped.
func (p *RedisPublisher) Subscribe(ctx context.Context, channel string, handler func(*SwapEvent)) error {
	sub := p.client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	p.logger.WithField("channel", channel).Info("subscribed to swap events")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev SwapEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				p.logger.WithError(err).WithField("channel", channel).Warn("dropping undecodable swap event")
				continue
			}
			handler(&ev)
		}
	}
}
