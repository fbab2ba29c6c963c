package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"example.com/extracurricular/internal/config"
	"example.com/extracurricular/internal/persistence/memory"
	redisstore "example.com/extracurricular/internal/persistence/redis"
	"example.com/extracurricular/internal/seed"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOpenStoreMemory(t *testing.T) {
	repo, closeStore, err := openStore(context.Background(), config.Config{
		StoreBackend: config.BackendMemory,
		StoreTimeout: time.Second,
	}, discard)
	require.NoError(t, err)
	defer closeStore()
	require.IsType(t, &memory.Store{}, repo)
}

func TestOpenStoreRedisSeeds(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	repo, closeStore, err := openStore(ctx, config.Config{
		StoreBackend: config.BackendRedis,
		StoreTimeout: time.Second,
		RedisAddr:    mr.Addr(),
		RedisPrefix:  "mergington:",
	}, discard)
	require.NoError(t, err)
	defer closeStore()
	require.IsType(t, &redisstore.Repository{}, repo)

	inserted, err := seed.EnsureSeeded(ctx, repo, seed.Catalog())
	require.NoError(t, err)
	require.Equal(t, 9, inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 9, count)
}

func TestOpenStoreRedisUnreachable(t *testing.T) {
	_, _, err := openStore(context.Background(), config.Config{
		StoreBackend: config.BackendRedis,
		StoreTimeout: 200 * time.Millisecond,
		RedisAddr:    "127.0.0.1:1",
	}, discard)
	require.ErrorContains(t, err, "ping redis")
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, _, err := openStore(context.Background(), config.Config{StoreBackend: "sqlite", StoreTimeout: time.Second}, discard)
	require.ErrorContains(t, err, "sqlite")
}
