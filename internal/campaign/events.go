package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// DefaultEventTTL is how long a delivery event id is remembered.
const DefaultEventTTL = 7 * 24 * time.Hour

const eventKeyPrefix = "leadforge:event:"

// EventFilter remembers delivery event ids. Seen records id and reports
// whether it had been recorded before. Forget drops a recorded id.
type EventFilter interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// RedisEventFilter is an EventFilter on Redis SETNX with a TTL, shared by
// every API replica.
type RedisEventFilter struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisEventFilter creates a filter. ttl <= 0 uses DefaultEventTTL.
func NewRedisEventFilter(rdb redis.Cmdable, ttl time.Duration) *RedisEventFilter {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &RedisEventFilter{rdb: rdb, ttl: ttl}
}

// Seen implements EventFilter.
func (f *RedisEventFilter) Seen(ctx context.Context, eventID string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, eventKeyPrefix+eventID, 1, f.ttl).Result()
	if err != nil {
		return false, eris.Wrap(err, "events: setnx")
	}
	return !set, nil
}

// Forget implements EventFilter.
func (f *RedisEventFilter) Forget(ctx context.Context, eventID string) error {
	return eris.Wrap(f.rdb.Del(ctx, eventKeyPrefix+eventID).Err(), "events: del")
}

// MemoryEventFilter is a process-local EventFilter for the CLI and tests.
type MemoryEventFilter struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryEventFilter creates a filter. ttl <= 0 uses DefaultEventTTL.
func NewMemoryEventFilter(ttl time.Duration) *MemoryEventFilter {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &MemoryEventFilter{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

// Seen implements EventFilter. Expired ids count as unseen.
func (f *MemoryEventFilter) Seen(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if at, ok := f.seen[eventID]; ok && now.Sub(at) < f.ttl {
		return true, nil
	}
	f.seen[eventID] = now
	return false, nil
}

// Forget implements EventFilter.
func (f *MemoryEventFilter) Forget(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, eventID)
	return nil
}
