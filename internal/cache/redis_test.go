package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"taskly/backend/internal/config"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	c := NewRedisCache(cfg, mr.Addr())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetGetRoundTrip(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := c.Set(ctx, "key1", payload{Name: "tasks", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := c.Get(ctx, "key1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Name != "tasks" || got.Count != 3 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupTestCache(t)

	var dest string
	if err := c.Get(context.Background(), "absent", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var dest string
	if err := c.Get(ctx, "key1", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestRedisCache_DeleteNoKeys(t *testing.T) {
	c, _ := setupTestCache(t)
	if err := c.Delete(context.Background()); err != nil {
		t.Errorf("Delete with no keys should be a no-op, got %v", err)
	}
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var dest string
	if err := c.Get(ctx, "key1", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestRedisCache_Health(t *testing.T) {
	c, mr := setupTestCache(t)

	if err := c.Health(context.Background()); err != nil {
		t.Errorf("expected healthy cache, got %v", err)
	}

	mr.Close()
	if err := c.Health(context.Background()); err == nil {
		t.Error("expected health check to fail after server shutdown")
	}
}
