package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	l, err := New(rdb, Config{MaxRequests: max, Window: window, KeyPrefix: "gs:rl"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, mr
}

func TestAllowWithinBudgetThenDenied(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		ok, count, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow %d: %v", i, err)
		}
		if !ok || count != int64(i) {
			t.Fatalf("request %d: expected allowed with count %d, got ok=%v count=%d", i, i, ok, count)
		}
	}

	ok, count, err := l.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok || count != 4 {
		t.Fatalf("expected fourth request denied, got ok=%v count=%d", ok, count)
	}

	ok, _, err = l.Allow(ctx, "10.0.0.2")
	if err != nil || !ok {
		t.Fatalf("expected other key unaffected, got ok=%v err=%v", ok, err)
	}
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if ok, _, _ := l.Allow(ctx, "k"); !ok {
		t.Fatal("expected first request allowed")
	}
	if ok, _, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("expected second request denied")
	}
	if ttl := mr.TTL("gs:rl:k"); ttl != time.Minute {
		t.Fatalf("expected window TTL of 1m, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)

	if ok, count, _ := l.Allow(ctx, "k"); !ok || count != 1 {
		t.Fatalf("expected fresh window, got ok=%v count=%d", ok, count)
	}
}

func TestCounterKeyUsesPrefix(t *testing.T) {
	l, mr := newTestLimiter(t, 5, time.Minute)
	ctx := context.Background()

	_, _, _ = l.Allow(ctx, "192.0.2.7")
	_, _, _ = l.Allow(ctx, "192.0.2.7")

	got, err := mr.Get("gs:rl:192.0.2.7")
	if err != nil {
		t.Fatalf("expected counter under prefixed key: %v", err)
	}
	if got != "2" {
		t.Fatalf("expected counter 2, got %q", got)
	}
}

func TestRedisFailureWrapped(t *testing.T) {
	l, mr := newTestLimiter(t, 5, time.Minute)
	mr.Close()

	_, _, err := l.Allow(context.Background(), "k")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "zero max", cfg: Config{MaxRequests: 0, Window: time.Minute, KeyPrefix: "p"}},
		{name: "zero window", cfg: Config{MaxRequests: 1, KeyPrefix: "p"}},
		{name: "empty prefix", cfg: Config{MaxRequests: 1, Window: time.Minute, KeyPrefix: " : "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(rdb, tc.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
	if _, err := New(nil, Config{MaxRequests: 1, Window: time.Minute, KeyPrefix: "p"}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for nil client, got %v", err)
	}
}
