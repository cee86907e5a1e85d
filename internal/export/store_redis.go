package export

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "backdrop:export:"

// RedisStore keeps exports in a redis hash that expires after ttl.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to rawURL and checks the connection.
func NewRedisStore(ctx context.Context, rawURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	key := newKey()
	rk := redisKeyPrefix + key
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rk, "filename", filename, "data", data)
		if s.ttl > 0 {
			pipe.Expire(ctx, rk, s.ttl)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis put export: %w", err)
	}
	return key, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Artifact, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	fields, err := s.rdb.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get export: %w", err)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, ErrNotFound
	}
	return &Artifact{Key: key, Filename: fields["filename"], Data: []byte(data)}, nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error { return s.rdb.Close() }
