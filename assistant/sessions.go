package assistant

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMaxSessions = 256

// Sessions is a bounded registry of conversations. When full, the least
// recently used session is evicted.
type Sessions struct {
	cache *lru.Cache[string, *Session]
}

func NewSessions(max int) (*Sessions, error) {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	cache, err := lru.New[string, *Session](max)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Sessions{cache: cache}, nil
}

// Create starts a new conversation seeded with the greeting.
func (r *Sessions) Create() *Session {
	s := NewSession()
	r.cache.Add(s.ID(), s)
	return s
}

func (r *Sessions) Get(id string) (*Session, bool) {
	return r.cache.Get(id)
}

func (r *Sessions) Len() int {
	return r.cache.Len()
}

// PruneIdle removes sessions inactive for longer than ttl and returns how
// many were removed. Sessions with a reply in progress are kept.
func (r *Sessions) PruneIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, id := range r.cache.Keys() {
		s, ok := r.cache.Peek(id)
		if !ok || s.Busy() || !s.LastActive().Before(cutoff) {
			continue
		}
		if r.cache.Remove(id) {
			removed++
		}
	}
	return removed
}
