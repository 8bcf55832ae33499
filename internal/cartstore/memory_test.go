package cartstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreAbsentCartReadsEmpty(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	raw, err := s.Get(ctx, "never-written")
	assert.NoError(t, err)
	assert.NotNil(t, raw)
	assert.Empty(t, raw)
}

func TestMemoryStoreSetGetRemove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.SetField(ctx, "cart-1", "var_1", "2"))
	assert.NoError(t, s.SetField(ctx, "cart-1", "var_2", "1"))

	raw, err := s.Get(ctx, "cart-1")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"var_1": "2", "var_2": "1"}, raw)

	// Carts are isolated by token
	other, err := s.Get(ctx, "cart-2")
	assert.NoError(t, err)
	assert.Empty(t, other)

	assert.NoError(t, s.RemoveField(ctx, "cart-1", "var_1"))
	raw, err = s.Get(ctx, "cart-1")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"var_2": "1"}, raw)

	// Removing from an unknown cart is a no-op, not an error
	assert.NoError(t, s.RemoveField(ctx, "cart-3", "var_1"))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.SetField(ctx, "cart-1", "var_1", "2"))

	raw, _ := s.Get(ctx, "cart-1")
	raw["var_1"] = "999"

	again, _ := s.Get(ctx, "cart-1")
	assert.Equal(t, "2", again["var_1"])
}

func TestMemoryStoreExpiresIdleCarts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	assert.NoError(t, s.SetField(ctx, "cart-1", "var_1", "2"))

	// Just inside the idle window the cart survives
	now = now.Add(CartTTL - time.Minute)
	raw, err := s.Get(ctx, "cart-1")
	assert.NoError(t, err)
	assert.Len(t, raw, 1)

	// Past the deadline the cart reads as empty, same as absent
	now = now.Add(2 * time.Minute)
	raw, err = s.Get(ctx, "cart-1")
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestMemoryStoreWritesRefreshTTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	assert.NoError(t, s.SetField(ctx, "cart-1", "var_1", "1"))

	// An active cart never expires: each write pushes the deadline out
	for i := 0; i < 3; i++ {
		now = now.Add(CartTTL - time.Hour)
		assert.NoError(t, s.SetField(ctx, "cart-1", "var_1", "2"))
	}

	now = now.Add(CartTTL - time.Hour)
	raw, err := s.Get(ctx, "cart-1")
	assert.NoError(t, err)
	assert.Len(t, raw, 1)

	// Once idle past the full window, it is gone
	now = now.Add(CartTTL + time.Minute)
	raw, err = s.Get(ctx, "cart-1")
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestMemoryStoreExpireOverridesDeadline(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	assert.NoError(t, s.SetField(ctx, "cart-1", "var_1", "1"))
	assert.NoError(t, s.Expire(ctx, "cart-1", time.Minute))

	now = now.Add(2 * time.Minute)
	raw, err := s.Get(ctx, "cart-1")
	assert.NoError(t, err)
	assert.Empty(t, raw)

	// Expiring a cart that does not exist is a no-op
	assert.NoError(t, s.Expire(ctx, "cart-ghost", time.Minute))
}
