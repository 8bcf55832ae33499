package cartstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback for environments without redis.
// It implements the same observable behavior as RedisStore, including
// idle expiration, so callers cannot tell the two apart.
type MemoryStore struct {
	mu       sync.RWMutex
	carts    map[string]map[string]string
	deadline map[string]time.Time
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:    make(map[string]map[string]string),
		deadline: make(map[string]time.Time),
		now:      time.Now,
	}
}

// evictIfExpired drops the cart when its TTL has passed. Callers hold
// the write lock.
func (s *MemoryStore) evictIfExpired(cartID string) {
	if d, ok := s.deadline[cartID]; ok && s.now().After(d) {
		delete(s.carts, cartID)
		delete(s.deadline, cartID)
	}
}

// Get returns a copy of the cart mapping; absent or expired carts read
// as an empty map.
func (s *MemoryStore) Get(_ context.Context, cartID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIfExpired(cartID)
	out := make(map[string]string, len(s.carts[cartID]))
	for k, v := range s.carts[cartID] {
		out[k] = v
	}
	return out, nil
}

// SetField upserts one line and refreshes the cart TTL.
func (s *MemoryStore) SetField(_ context.Context, cartID, lineID, qty string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIfExpired(cartID)
	if s.carts[cartID] == nil {
		s.carts[cartID] = make(map[string]string)
	}
	s.carts[cartID][lineID] = qty
	s.deadline[cartID] = s.now().Add(CartTTL)
	return nil
}

// RemoveField deletes one line from the cart.
func (s *MemoryStore) RemoveField(_ context.Context, cartID, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIfExpired(cartID)
	if m, ok := s.carts[cartID]; ok {
		delete(m, lineID)
	}
	return nil
}

// Expire sets the TTL for the whole cart record.
func (s *MemoryStore) Expire(_ context.Context, cartID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[cartID]; ok {
		s.deadline[cartID] = s.now().Add(ttl)
	}
	return nil
}
