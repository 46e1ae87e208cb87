package main

import (
	"context"
	"strings"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/config"
	"github.com/yanqian/smart-faq/internal/infra/faqcache"
	"github.com/yanqian/smart-faq/internal/infra/faqrepo"
)

func provideFAQConfig(cfg *config.Config) faq.Config {
	return faq.Config{
		MatchThreshold: cfg.FAQ.MatchThreshold,
		FallbackAnswer: cfg.FAQ.FallbackAnswer,
		TopQuestions:   cfg.FAQ.TopQuestions,
		CacheTTL:       cfg.FAQ.CacheTTL,
	}
}

func provideEntryRepository(cfg *config.Config, logger *slog.Logger) faq.EntryRepository {
	fallback := faqrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.FAQ.Postgres.DSN)
	if dsn == "" {
		logger.Info("faq postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.FAQ.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.FAQ.Postgres.MaxConns
	}
	if cfg.FAQ.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.FAQ.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("faq postgres repository enabled")
	return faqrepo.NewPostgresRepository(pool)
}

func provideAnswerCache(cfg *config.Config, logger *slog.Logger) faq.AnswerCache {
	if cfg.FAQ.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return faqcache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return faqcache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("faq valkey cache enabled", "addr", cfg.FAQ.Valkey.Addr)
			return faqcache.NewValkeyCache(client, "faq")
		}
	}
	return faqcache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.FAQ.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.FAQ.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.FAQ.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
