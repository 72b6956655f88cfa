package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/coursedesk/config"
)

// Run connects infrastructure, wires services and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	if cfg == nil {
		return errors.New("app config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = RunMigrations(ctx, cfg.Postgres, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	pool, err := ConnectPool(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	var redisClient redis.UniversalClient
	if cfg.Session.Store == config.SessionStoreRedis {
		redisClient, err = ConnectRedis(dbCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close redis: %w", cerr))
			}
		}()
	}

	provider, err := BuildIdentityProvider(ctx, IdentityProviderConfig{Auth: cfg.Auth, Logger: logger})
	if err != nil {
		return err
	}
	sessions, err := BuildSessionStore(SessionStoreConfig{Config: cfg, RedisClient: redisClient, Logger: logger})
	if err != nil {
		return err
	}

	services, err := NewServices(&ServiceDeps{
		Config:   cfg,
		Adapters: ServiceAdapters{Provider: provider, Sessions: sessions, Pool: pool},
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	server := NewHTTPServer(HTTPServerConfig{
		Addr:    cfg.HTTP.Addr,
		Handler: BuildHTTPHandler(HandlerConfig{Config: cfg, Services: services, Logger: logger}),
		Logger:  logger,
	})
	return ListenAndServe(ctx, server, logger)
}
