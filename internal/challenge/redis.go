package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login:challenge:"

// consumeScript deletes the challenge only if it still matches the presented
// message, making compare-and-delete a single atomic step on the server.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore backs the challenge map with redis so multiple instances share
// one challenge per wallet. TTL is a hardening knob on top of the contract:
// zero means entries live until consumed or overwritten.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) key(walletAddress string) string { return keyPrefix + walletAddress }

func (s *RedisStore) Issue(ctx context.Context, walletAddress string) (string, error) {
	msg, err := NewMessage()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, s.key(walletAddress), msg, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store challenge: %w", err)
	}
	return msg, nil
}

func (s *RedisStore) Get(ctx context.Context, walletAddress string) (string, bool, error) {
	msg, err := s.rdb.Get(ctx, s.key(walletAddress)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load challenge: %w", err)
	}
	return msg, true, nil
}

func (s *RedisStore) Consume(ctx context.Context, walletAddress, message string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.rdb, []string{s.key(walletAddress)}, message).Int()
	if err != nil {
		return false, fmt.Errorf("consume challenge: %w", err)
	}
	return n == 1, nil
}
