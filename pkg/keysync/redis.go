package keysync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/apimgmt/pkg/logger"
)

// DefaultChannel is the pub/sub channel key events are published on.
const DefaultChannel = "apimgmt:apikeys"

var ErrPublishFailed = errors.New("keysync: publish failed")

// RedisPublisher publishes events as JSON on a Redis channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

func NewRedisPublisher(client redis.UniversalClient, channel string, log *slog.Logger) *RedisPublisher {
	if client == nil {
		panic("keysync: redis client is required")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisPublisher{client: client, channel: channel, logger: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Subscribe invokes h for every event received until ctx is done.
// Malformed payloads are logged and skipped.
func (p *RedisPublisher) Subscribe(ctx context.Context, h Handler) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("keysync: subscribe %s: %w", p.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				p.logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed key event",
					slog.String("channel", msg.Channel),
					logger.Error(err),
				)
				continue
			}
			h(ctx, event)
		}
	}
}
