// internal/variables/store_test.go
package variables_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/macro-cli/internal/config"
	"github.com/xkilldash9x/macro-cli/internal/variables"
)

// runStoreContract exercises the behaviour every backend shares.
func runStoreContract(t *testing.T, store variables.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "count", "3"))
	require.NoError(t, store.Set(ctx, "empty", ""))
	v, ok, err := store.Get(ctx, "count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	v, ok, err = store.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok, "an empty value still exists")
	assert.Empty(t, v)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3", all["count"])

	// Snapshots are detached from the store.
	all["count"] = "changed"
	v, _, err = store.Get(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Set(ctx, fmt.Sprintf("v%d", i), "x"))
			_, _, err := store.Get(ctx, "count")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 18)
}

func TestMemoryStore(t *testing.T) {
	s := variables.NewMemoryStore(nil)
	runStoreContract(t, s)
	assert.NoError(t, s.Close())
}

func TestMemoryStore_CopiesInitial(t *testing.T) {
	initial := map[string]string{"a": "1"}
	s := variables.NewMemoryStore(initial)
	initial["a"] = "2"

	v, ok, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	s := variables.NewRedisStore(client, "macro:test")
	defer s.Close()

	runStoreContract(t, s)
	assert.Equal(t, "3", mr.HGet("macro:test", "count"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := variables.NewRedisStore(client, "macro:test")
	defer s.Close()
	mr.Close()

	_, _, err := s.Get(context.Background(), "x")
	assert.Error(t, err)
	assert.Error(t, s.Set(context.Background(), "x", "1"))
	_, err = s.List(context.Background())
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	s, err := variables.Open(context.Background(), config.VariablesConfig{
		Backend: config.BackendMemory,
		Initial: map[string]string{"greeting": "hi"},
	})
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(context.Background(), "greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestOpen_RedisSeedsOnlyMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet("macro:variables", "kept", "old")

	s, err := variables.Open(context.Background(), config.VariablesConfig{
		Backend: config.BackendRedis,
		Redis:   config.RedisConfig{Addr: mr.Addr(), Key: "macro:variables"},
		Initial: map[string]string{"kept": "new", "added": "1"},
	})
	require.NoError(t, err)
	defer s.Close()

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kept": "old", "added": "1"}, all)
}

func TestOpen_Errors(t *testing.T) {
	_, err := variables.Open(context.Background(), config.VariablesConfig{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown variables backend")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = variables.Open(context.Background(), config.VariablesConfig{
		Backend: config.BackendRedis,
		Redis:   config.RedisConfig{Addr: addr, Key: "k"},
	})
	assert.ErrorContains(t, err, "connecting to redis")
}
