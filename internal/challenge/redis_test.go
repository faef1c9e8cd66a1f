package challenge

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisStore(rdb, ttl), mr
}

func TestRedisIssueAndConsume(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t, 0)

	msg, err := s.Issue(ctx, "walletA")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, ok, err := s.Get(ctx, "walletA")
	if err != nil || !ok || got != msg {
		t.Fatalf("get: msg=%q ok=%v err=%v", got, ok, err)
	}

	if ok, err := s.Consume(ctx, "walletA", msg); err != nil || !ok {
		t.Fatalf("consume: ok=%v err=%v", ok, err)
	}
	if ok, _ := s.Consume(ctx, "walletA", msg); ok {
		t.Fatal("challenge must be single use")
	}
}

func TestRedisMismatchLeavesChallengePending(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t, 0)

	msg, _ := s.Issue(ctx, "walletA")
	if ok, _ := s.Consume(ctx, "walletA", "something else"); ok {
		t.Fatal("mismatched consume must fail")
	}
	if ok, _ := s.Consume(ctx, "walletA", msg); !ok {
		t.Fatal("pending challenge must survive a mismatched consume")
	}
}

func TestRedisReissueReplaces(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t, 0)

	first, _ := s.Issue(ctx, "walletA")
	second, _ := s.Issue(ctx, "walletA")

	if ok, _ := s.Consume(ctx, "walletA", first); ok {
		t.Fatal("replaced challenge must not be consumable")
	}
	if ok, _ := s.Consume(ctx, "walletA", second); !ok {
		t.Fatal("latest challenge must be consumable")
	}
}

func TestRedisTTLExpiresChallenge(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Minute)

	msg, _ := s.Issue(ctx, "walletA")
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := s.Get(ctx, "walletA"); ok {
		t.Fatal("expired challenge must be gone")
	}
	if ok, _ := s.Consume(ctx, "walletA", msg); ok {
		t.Fatal("expired challenge must not be consumable")
	}
}
