package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) WriteBatch(ctx context.Context, b Batch) error {
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range b.Values {
			pipe.Set(ctx, e.Key, e.Value, 0)
		}
		for _, idx := range b.Index {
			pipe.ZAdd(ctx, idx.Key, redis.Z{Score: idx.Score, Member: idx.Member})
		}
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

func (s *RedisStore) RevRange(ctx context.Context, key string, offset, limit int64) ([]string, error) {
	stop := int64(-1)
	if limit >= 0 {
		if limit == 0 {
			return []string{}, nil
		}
		stop = offset + limit - 1
	}
	return s.client.ZRevRange(ctx, key, offset, stop).Result()
}

func (s *RedisStore) Count(ctx context.Context, key string) (int64, error) {
	return s.client.ZCard(ctx, key).Result()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close leaves the client open: it is shared with the rate limiter and
// closed by the application.
func (s *RedisStore) Close() error {
	return nil
}
