package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type countingOracle struct {
	demo  bool
	err   error
	calls int
}

func (o *countingOracle) IsDemoKey(_ context.Context, _ string) (bool, error) {
	o.calls++
	return o.demo, o.err
}

func TestCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to run miniredis: %v", err)
	}
	defer mr.Close()

	next := &countingOracle{demo: true}
	cache := NewCache(mr.Addr(), "", 0, time.Minute, next)
	ctx := context.Background()

	// First lookup misses and asks the remote oracle.
	isDemo, err := cache.IsDemoKey(ctx, "0x12345678")
	if err != nil {
		t.Fatalf("IsDemoKey failed: %v", err)
	}
	if !isDemo {
		t.Errorf("Expected demo classification")
	}
	if next.calls != 1 {
		t.Errorf("Expected 1 remote lookup, got %d", next.calls)
	}

	// Second lookup is served from Redis.
	isDemo, err = cache.IsDemoKey(ctx, "0x12345678")
	if err != nil {
		t.Fatalf("IsDemoKey failed: %v", err)
	}
	if !isDemo {
		t.Errorf("Expected cached demo classification")
	}
	if next.calls != 1 {
		t.Errorf("Expected cached hit, got %d remote lookups", next.calls)
	}

	// TTL expiry falls back to the remote oracle again.
	mr.FastForward(2 * time.Minute)
	if _, err := cache.IsDemoKey(ctx, "0x12345678"); err != nil {
		t.Fatalf("IsDemoKey failed: %v", err)
	}
	if next.calls != 2 {
		t.Errorf("Expected refresh after TTL, got %d remote lookups", next.calls)
	}
}

func TestCacheNonDemoAndErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()

	next := &countingOracle{demo: false}
	cache := NewCache(mr.Addr(), "", 0, time.Minute, next)

	if isDemo, err := cache.IsDemoKey(ctx, "0xcafebabe"); err != nil || isDemo {
		t.Errorf("Expected non-demo, got %v (err %v)", isDemo, err)
	}
	// Negative results are cached too.
	if _, err := cache.IsDemoKey(ctx, "0xcafebabe"); err != nil {
		t.Fatalf("IsDemoKey failed: %v", err)
	}
	if next.calls != 1 {
		t.Errorf("Expected negative result to be cached, got %d lookups", next.calls)
	}

	failing := &countingOracle{err: errors.New("lm service down")}
	failingCache := NewCache(mr.Addr(), "", 0, time.Minute, failing)
	if _, err := failingCache.IsDemoKey(ctx, "0x00000000"); err == nil {
		t.Errorf("Expected remote failure to propagate")
	}
	if mr.Exists(keyPrefix + "0x00000000") {
		t.Errorf("Expected no cache entry after remote failure")
	}
}
