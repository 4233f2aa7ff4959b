package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"ctchen222/Tikki-Tacca/internal/events"
	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RedisHub is a Hub backed by Redis Pub/Sub, so watchers may be connected to any server instance.
type RedisHub struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisHub creates a hub publishing on the given client.
func NewRedisHub(rdb *redis.Client) *RedisHub {
	return &RedisHub{rdb: rdb, logger: slog.Default().With("component", "hub.redis")}
}

func (h *RedisHub) Publish(ctx context.Context, gameID string, state game.Snapshot) error {
	channel := events.GameChannel(gameID)
	ctx, span := tracer.Start(ctx, "hub.Publish", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("redis.channel", channel),
	))
	defer span.End()

	event, err := events.NewStateChanged(gameID, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build state_changed event")
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("encoding event: %w", err)
	}

	if err := h.rdb.Publish(ctx, channel, data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish state_changed event")
		return fmt.Errorf("publishing on %s: %w", channel, err)
	}
	return nil
}

func (h *RedisHub) Subscribe(ctx context.Context, gameID string) (<-chan game.Snapshot, func(), error) {
	channel := events.GameChannel(gameID)
	pubsub := h.rdb.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so no state published afterwards is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", channel, err)
	}

	out := make(chan game.Snapshot, subscriberBuffer)
	stop := make(chan struct{})
	go h.forward(ctx, gameID, pubsub, out, stop)

	var once sync.Once
	cancel := func() { once.Do(func() { close(stop) }) }
	return out, cancel, nil
}

// forward decodes events from pubsub into out until stop is closed or ctx is done.
func (h *RedisHub) forward(ctx context.Context, gameID string, pubsub *redis.PubSub, out chan game.Snapshot, stop <-chan struct{}) {
	defer close(out)
	defer pubsub.Close()

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.ErrorContext(ctx, "Could not unmarshal game event", "game.id", gameID, "error", err)
				continue
			}
			if event.Type != events.StateChanged {
				continue
			}
			var payload events.StateChangedPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				h.logger.ErrorContext(ctx, "Could not unmarshal state_changed payload", "game.id", gameID, "error", err)
				continue
			}
			offer(out, payload.State)
		}
	}
}
