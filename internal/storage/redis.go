package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores values as plain Redis strings under prefix+key
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBackend connects to the Redis server at url and checks the connection
func NewRedisBackend(ctx context.Context, url, prefix string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBackend{rdb: rdb, prefix: prefix}, nil
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes the batch inside MULTI/EXEC
func (b *RedisBackend) Save(ctx context.Context, entries ...Entry) error {
	_, err := b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, b.prefix+e.Key, e.Data, 0)
		}
		return nil
	})
	return err
}

func (b *RedisBackend) Remove(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, b.prefix+key).Err()
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
