package events

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedisEmitter publishes lifecycle events to Redis pub/sub, one channel per
// event name. Other processes observing the same cache subscribe with
// PSUBSCRIBE on "namespace:*".
type RedisEmitter struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisEmitter creates an emitter publishing through the given client.
func NewRedisEmitter(client *redis.Client) *RedisEmitter {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisEmitter{
		client: client,
		logger: log.With().Str("component", "events").Logger(),
	}
}

// Emit implements Emitter. Publish failures are logged and dropped;
// notifications carry no delivery guarantee.
func (e *RedisEmitter) Emit(ctx context.Context, event string) {
	eventsEmitted.WithLabelValues(event).Inc()

	if err := e.client.Publish(ctx, event, "").Err(); err != nil {
		e.logger.Warn().
			Err(err).
			Str("channel", event).
			Msg("Event publish failed")
		return
	}

	e.logger.Debug().Str("channel", event).Msg("Event published")
}
