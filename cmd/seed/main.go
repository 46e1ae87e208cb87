package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/config"
	"github.com/yanqian/smart-faq/internal/infra/faqrepo"
	"github.com/yanqian/smart-faq/pkg/logger"
	"github.com/yanqian/smart-faq/pkg/metrics"
)

type seedFile struct {
	Entries []seedEntry `yaml:"entries"`
}

type seedEntry struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

func main() {
	file := flag.String("file", "configs/seed.yaml", "path to the yaml file with FAQ entries")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger := logger.New().With("component", "seed")

	dsn := strings.TrimSpace(cfg.FAQ.Postgres.DSN)
	if dsn == "" {
		log.Fatal("FAQ_POSTGRES_DSN must be set to seed the store")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("failed to read seed file: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("failed to parse seed file: %v", err)
	}
	if len(seed.Entries) == 0 {
		log.Fatalf("seed file %s contains no entries", *file)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("postgres ping failed: %v", err)
	}

	repo := faqrepo.NewPostgresRepository(pool)
	svc := faq.NewService(faq.Config{
		MatchThreshold: cfg.FAQ.MatchThreshold,
		FallbackAnswer: cfg.FAQ.FallbackAnswer,
		TopQuestions:   cfg.FAQ.TopQuestions,
		CacheTTL:       cfg.FAQ.CacheTTL,
	}, repo, nil, metrics.NewCounters(), slogLogger)

	seeded := 0
	for _, item := range seed.Entries {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = uuid.NewString()
		}
		entry, err := svc.UpsertEntry(ctx, id, item.Question, item.Answer)
		if err != nil {
			log.Fatalf("failed to seed entry %q: %v", item.Question, err)
		}
		slogLogger.Info("entry seeded", "id", entry.ID, "question", entry.Question)
		seeded++
	}
	slogLogger.Info("seeding complete", "entries", seeded)
}
