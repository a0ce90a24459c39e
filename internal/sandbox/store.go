package sandbox

import (
	"context"
	"sync"
	"time"
)

// replayEntry is a response recorded under an idempotency key.
type replayEntry struct {
	Status    int
	Body      []byte
	CreatedAt time.Time
}

// replayStore keeps responses by request id so a repeated request gets the
// original answer instead of a second side effect.
type replayStore struct {
	mu   sync.RWMutex
	data map[string]*replayEntry
	ttl  time.Duration
	now  func() time.Time
}

func newReplayStore(ttl time.Duration, now func() time.Time) *replayStore {
	return &replayStore{
		data: make(map[string]*replayEntry),
		ttl:  ttl,
		now:  now,
	}
}

func (rs *replayStore) get(key string) (*replayEntry, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	e, ok := rs.data[key]
	if !ok || rs.expired(e) {
		return nil, false
	}
	return e, true
}

func (rs *replayStore) set(key string, status int, body []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.data[key] = &replayEntry{Status: status, Body: body, CreatedAt: rs.now()}
}

func (rs *replayStore) expired(e *replayEntry) bool {
	return rs.now().Sub(e.CreatedAt) > rs.ttl
}

// sweep evicts entries older than the TTL and returns how many went.
func (rs *replayStore) sweep() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	evicted := 0
	for key, e := range rs.data {
		if rs.expired(e) {
			delete(rs.data, key)
			evicted++
		}
	}
	return evicted
}

func (rs *replayStore) len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.data)
}

// runSweeper evicts expired entries every interval until ctx is done.
func (rs *replayStore) runSweeper(ctx context.Context, interval time.Duration, onEvict func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rs.sweep(); n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}
