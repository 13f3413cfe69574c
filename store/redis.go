package store

import (
	"context"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// RedisBackend stores the document under a single redis key
type RedisBackend struct {
	client *redis.Client
	key    string
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

func (r *RedisBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.WithContext(ctx).Get(r.key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotExist
	}
	return data, errors.Wrapf(err, "redis GET %s", r.key)
}

func (r *RedisBackend) Write(ctx context.Context, data []byte) error {
	err := r.client.WithContext(ctx).Set(r.key, data, 0).Err()
	return errors.Wrapf(err, "redis SET %s", r.key)
}

func (r *RedisBackend) String() string {
	return "redis:" + r.key
}
