package cartstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each cart as a redis hash keyed cart:{token}.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore over an existing client. The client
// is constructed once at process start and injected; this package never
// reaches for a global connection.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient dials redis with the client defaults the rest of the
// app relies on for timeouts.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func cartKey(cartID string) string {
	return fmt.Sprintf(KeyCart, cartID)
}

// Get returns the cart mapping. HGETALL on a missing key yields an empty
// map, which is exactly the absent-cart contract.
func (s *RedisStore) Get(ctx context.Context, cartID string) (map[string]string, error) {
	raw, err := s.client.HGetAll(ctx, cartKey(cartID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart store unreachable: %w", err)
	}
	if raw == nil {
		raw = map[string]string{}
	}
	return raw, nil
}

// SetField upserts a single line and refreshes the cart's idle TTL.
func (s *RedisStore) SetField(ctx context.Context, cartID, lineID, qty string) error {
	key := cartKey(cartID)
	if err := s.client.HSet(ctx, key, lineID, qty).Err(); err != nil {
		return fmt.Errorf("failed to set cart field: %w", err)
	}
	if err := s.client.Expire(ctx, key, CartTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh cart ttl: %w", err)
	}
	return nil
}

// RemoveField deletes a single line from the cart hash.
func (s *RedisStore) RemoveField(ctx context.Context, cartID, lineID string) error {
	if err := s.client.HDel(ctx, cartKey(cartID), lineID).Err(); err != nil {
		return fmt.Errorf("failed to remove cart field: %w", err)
	}
	return nil
}

// Expire sets the TTL for the whole cart record.
func (s *RedisStore) Expire(ctx context.Context, cartID string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, cartKey(cartID), ttl).Err(); err != nil {
		return fmt.Errorf("failed to expire cart: %w", err)
	}
	return nil
}
