package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"example.com/extracurricular/internal/config"
	"example.com/extracurricular/internal/domain"
	"example.com/extracurricular/internal/persistence/memory"
	mongostore "example.com/extracurricular/internal/persistence/mongo"
	pgstore "example.com/extracurricular/internal/persistence/postgres"
	redisstore "example.com/extracurricular/internal/persistence/redis"
)

// openStore connects the backend selected by cfg.StoreBackend. The returned
// close func releases the underlying client.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.ActivityRepository, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongostore.Connect(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		collection := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		logger.Info("connected to mongo", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		return mongostore.NewRepository(collection), func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		}, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(connectCtx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		repo := pgstore.NewRepository(pool)
		if err := repo.EnsureSchema(connectCtx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("connected to postgres")
		return repo, pool.Close, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(connectCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return redisstore.NewRepository(client, cfg.RedisPrefix), func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close failed", "error", err)
			}
		}, nil

	case config.BackendMemory:
		logger.Warn("using in-memory store; rosters are lost on restart")
		return memory.NewStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}
