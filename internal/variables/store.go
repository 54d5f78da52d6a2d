// internal/variables/store.go
// Package variables provides the variable tables a macro run reads and writes.
package variables

import (
	"context"
	"fmt"
	"io"

	backend "github.com/redis/go-redis/v9"

	"github.com/xkilldash9x/macro-cli/internal/config"
	"github.com/xkilldash9x/macro-cli/internal/macro"
)

// Store is a variable table that may hold a connection.
type Store interface {
	macro.VariableStore
	io.Closer
}

// Open builds the store selected by cfg and seeds it with cfg.Initial. The
// redis backend only seeds names that are not stored yet.
func Open(ctx context.Context, cfg config.VariablesConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemoryStore(cfg.Initial), nil
	case config.BackendRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		s := NewRedisStore(client, cfg.Redis.Key)
		if err := s.seed(ctx, cfg.Initial); err != nil {
			_ = client.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown variables backend %q", cfg.Backend)
	}
}
