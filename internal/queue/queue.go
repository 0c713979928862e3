// Package queue carries attendance events from the API to the worker.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis list holding pending events.
const DefaultKey = "dayflow:events"

// Event types.
const (
	TypeClockIn  = "clockin"
	TypeClockOut = "clockout"
)

// Event is an attendance state change.
type Event struct {
	Type  string    `json:"type"`
	Owner string    `json:"owner"`
	Day   string    `json:"day"`
	At    time.Time `json:"at"`
}

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, evt Event) error
	Consume(ctx context.Context) (<-chan Event, error)
}

// InMemory is a channel-backed queue for dev and tests. Publisher and
// consumer must share the process.
type InMemory struct {
	ch chan Event
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Event, size)}
}

// Publish enqueues an event, blocking while the buffer is full.
func (q *InMemory) Publish(ctx context.Context, evt Event) error {
	select {
	case q.ch <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel that closes when ctx is cancelled.
func (q *InMemory) Consume(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case evt := <-q.ch:
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue is a Redis list-backed queue.
type RedisQueue struct {
	client *redis.Client
	key    string
	wait   time.Duration
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{client: client, key: key, wait: 5 * time.Second}
}

// Publish enqueues an event.
func (q *RedisQueue) Publish(ctx context.Context, evt Event) error {
	raw, err := Encode(evt)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, raw).Err()
}

// Consume streams events using BRPOP. Undecodable entries are logged and
// dropped.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, q.wait, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !errors.Is(err, redis.Nil) {
					log.Printf("queue: brpop %s: %v", q.key, err)
					time.Sleep(time.Second)
				}
				continue
			}
			if len(res) != 2 {
				continue
			}
			evt, err := Decode(res[1])
			if err != nil {
				log.Printf("queue: drop malformed event: %v", err)
				continue
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Encode renders evt as the JSON stored on the wire.
func Encode(evt Event) (string, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("queue: encode: %w", err)
	}
	return string(b), nil
}

// Decode parses a wire entry and checks the required fields.
func Decode(s string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(s), &evt); err != nil {
		return Event{}, fmt.Errorf("queue: decode: %w", err)
	}
	if evt.Type != TypeClockIn && evt.Type != TypeClockOut {
		return Event{}, fmt.Errorf("queue: unknown event type %q", evt.Type)
	}
	if evt.Owner == "" || evt.Day == "" {
		return Event{}, errors.New("queue: event missing owner or day")
	}
	return evt, nil
}
