package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "funmarket/internal/adapters/http_server"
	"funmarket/internal/adapters/observability"
	redisad "funmarket/internal/adapters/redis"
	"funmarket/internal/adapters/resilience"
	"funmarket/internal/app"
	"funmarket/internal/domain"
	"funmarket/internal/search"
	"funmarket/internal/shared"
	mysqlrepo "funmarket/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := resilience.NewRepository(mysqlrepo.New(db), resilience.BreakerConfig{
		Name:        "listings-store",
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
	})
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := cache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; searches will miss the cache")
	}

	engine := search.NewEngine(cfg.Location(), domain.SystemClock{})
	engine.NewWithin = cfg.Search.NewWithin
	engine.PopularCities = cfg.Search.PopularCities
	svc := app.NewSearchService(repo, cache, cfg.CacheTTL, engine, cfg.Search.TrendingLimit)

	// http
	srv := server.New(server.Options{
		Timeout:      cfg.HTTPTimeout,
		CORSOrigins:  cfg.CORS.Origins,
		RateRequests: cfg.RateLimit.Requests,
		RateWindow:   cfg.RateLimit.Window,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc})

	if cfg.MetricsAddr != "" && cfg.MetricsAddr != cfg.HTTPAddr {
		observability.Serve(cfg.MetricsAddr, reg)
	}

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("tz", cfg.Search.Timezone).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	_ = cache.Close()
	_ = db.Close()
	log.Info().Msg("API stopped")
}
