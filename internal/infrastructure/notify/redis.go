// Package notify forwards committed ledger events to redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"stokvel-backend/internal/domain/event"
)

const (
	DefaultChannel = "stokvel:events"

	// consecutive failed publishes before the breaker opens
	tripAfter   = 5
	openTimeout = 30 * time.Second
)

var _ event.Publisher = (*RedisPublisher)(nil)

// RedisPublisher sends events through a circuit breaker: while redis is down
// publishes fail immediately with gobreaker.ErrOpenState.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	cb      *gobreaker.CircuitBreaker
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-publish",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= tripAfter },
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &RedisPublisher{rdb: rdb, channel: channel, cb: cb}
}

// Publish sends each event as one JSON message, in order, in a single
// pipeline round trip.
func (p *RedisPublisher) Publish(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([][]byte, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", e.EventID, err)
		}
		msgs = append(msgs, b)
	}
	_, err := p.cb.Execute(func() (interface{}, error) {
		pipe := p.rdb.Pipeline()
		for _, b := range msgs {
			pipe.Publish(ctx, p.channel, b)
		}
		return pipe.Exec(ctx)
	})
	if err != nil {
		return fmt.Errorf("publish %d events: %w", len(events), err)
	}
	return nil
}
