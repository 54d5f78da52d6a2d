// internal/variables/redis.go
package variables

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// RedisStore keeps every variable as a field of one redis hash, so several
// runs, or several machines, can share them.
type RedisStore struct {
	client *backend.Client
	key    string
}

// NewRedisStore wraps an existing client. key names the hash.
func NewRedisStore(client *backend.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, name).Result()
	if errors.Is(err, backend.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", name, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, name, value string) error {
	if err := s.client.HSet(ctx, s.key, name, value).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", name, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) (map[string]string, error) {
	vars, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	return vars, nil
}

// seed stores the values whose names are not set yet.
func (s *RedisStore) seed(ctx context.Context, initial map[string]string) error {
	if len(initial) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(p backend.Pipeliner) error {
		for k, v := range initial {
			p.HSetNX(ctx, s.key, k, v)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis seed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
