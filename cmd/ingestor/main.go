package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"funmarket/internal/adapters/feed"
	"funmarket/internal/adapters/observability"
	redisad "funmarket/internal/adapters/redis"
	"funmarket/internal/app"
	"funmarket/internal/domain"
	"funmarket/internal/search"
	"funmarket/internal/shared"
	mysqlrepo "funmarket/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// every line of this run carries the same run id
	runID := uuid.NewString()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).With().Str("run_id", runID).Logger()

	log.Info().
		Str("base", cfg.Feed.BaseURL).
		Int("workers", cfg.Ingest.Workers).
		Int("page_size", cfg.Ingest.PageSize).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := feed.New(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Feed.RPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize feed client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	norm := search.NewNormalizer(cfg.Location(), domain.SystemClock{})
	ing := app.NewIngestionService(client, repo, cache, norm, cfg.Ingest.PageSize, cfg.Ingest.MaxPages)

	sem := semaphore.NewWeighted(int64(cfg.Ingest.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0
	start := time.Now()

	for _, kind := range domain.Kinds {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			break
		}

		wg.Add(1)
		go func(k domain.Kind) {
			defer wg.Done()
			defer sem.Release(1)

			st, err := ing.IngestKind(ctx, k)
			ev := log.Info()
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				ev = log.Warn().Err(err)
			}
			ev.Str("kind", string(k)).
				Int("pages", st.Pages).
				Int("upserted", st.Upserted).
				Int("malformed", st.Malformed).
				Msg("ingest kind done")
		}(kind)
	}

	wg.Wait()

	// results may have changed even when one kind failed part-way
	if err := ing.Invalidate(context.Background()); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
	_ = cache.Close()
	_ = db.Close()

	log.Info().Dur("took", time.Since(start)).Int("failed_kinds", failed).Msg("ingestion completed")
	if failed > 0 {
		os.Exit(1)
	}
}
