// Package presence keeps the "who is clocked in right now" board. The
// worker feeds it from queue events and the API reads it.
package presence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"dayflow/internal/queue"
)

// KeyTTL bounds how long a day's set survives in Redis.
const KeyTTL = 48 * time.Hour

// Board tracks the owners currently clocked in, per day.
type Board interface {
	Add(ctx context.Context, day, owner string) error
	Remove(ctx context.Context, day, owner string) error
	List(ctx context.Context, day string) ([]string, error)
}

// Apply updates b for one attendance event.
func Apply(ctx context.Context, b Board, evt queue.Event) error {
	switch evt.Type {
	case queue.TypeClockIn:
		return b.Add(ctx, evt.Day, evt.Owner)
	case queue.TypeClockOut:
		return b.Remove(ctx, evt.Day, evt.Owner)
	default:
		return fmt.Errorf("presence: unknown event type %q", evt.Type)
	}
}

// Memory is a process-local board.
type Memory struct {
	mu   sync.RWMutex
	days map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{days: make(map[string]map[string]struct{})}
}

func (m *Memory) Add(_ context.Context, day, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.days[day]
	if !ok {
		set = make(map[string]struct{})
		m.days[day] = set
	}
	set[owner] = struct{}{}
	return nil
}

func (m *Memory) Remove(_ context.Context, day, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.days[day], owner)
	return nil
}

func (m *Memory) List(_ context.Context, day string) ([]string, error) {
	m.mu.RLock()
	out := make([]string, 0, len(m.days[day]))
	for owner := range m.days[day] {
		out = append(out, owner)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

// Redis stores each day as a set under dayflow:presence:<day>.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(day string) string { return "dayflow:presence:" + day }

func (r *Redis) Add(ctx context.Context, day, owner string) error {
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key(day), owner)
	pipe.Expire(ctx, key(day), KeyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Remove(ctx context.Context, day, owner string) error {
	return r.client.SRem(ctx, key(day), owner).Err()
}

func (r *Redis) List(ctx context.Context, day string) ([]string, error) {
	owners, err := r.client.SMembers(ctx, key(day)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(owners)
	return owners, nil
}
