// Command server starts the ATS resume analyzer HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/ai"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/ai/openrouter"
	rediscache "github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/cache/redis"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/httpserver"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/repo/postgres"
	tikaext "github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/app"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/catalog"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/service/ratelimiter"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/usecase"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, analysis, LLM and cache instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Role store: Postgres when configured, otherwise the built-in catalog in memory.
	var (
		repo   domain.RoleRepository
		dbPing app.Pinger
	)
	if cfg.DBURL != "" {
		if cfg.DBAutoMigrate {
			if err := postgres.RunMigrations(cfg.DBURL); err != nil {
				slog.Error("db migrations failed", slog.Any("error", err))
				os.Exit(1)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		repo = postgres.NewRoleRepo(pool)
		dbPing = pool
		slog.Info("role store: postgres")
	} else {
		repo = memory.NewRoleRepo(catalog.Builtin()...)
		slog.Info("role store: in-memory built-in catalog", slog.Int("roles", len(catalog.Roles())))
	}

	// Redis: keyword cache and shared LLM call budget.
	var (
		rdb       *redis.Client
		redisPing redis.Cmdable
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", slog.Any("error", err))
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		repo = rediscache.NewRoleCache(repo, rdb, cfg.KeywordCacheTTL)
		redisPing = rdb
		slog.Info("keyword cache enabled", slog.Duration("ttl", cfg.KeywordCacheTTL))
	}

	enricher, err := buildEnricher(ctx, cfg, rdb)
	if err != nil {
		slog.Error("llm enricher setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	// External text extractor (Apache Tika)
	ext := tikaext.New(cfg.TikaURL)

	// Usecases
	roleSvc := usecase.NewRoleService(repo)
	analyzeSvc := usecase.NewAnalyzeService(roleSvc, enricher, usecase.AnalyzeOptions{
		Weights:       cfg.ScoringWeights(),
		MinTextLength: cfg.MinTextLength,
		LLMTimeout:    cfg.LLMTimeout,
	})

	dbCheck, redisCheck, tikaCheck := app.BuildReadinessChecks(dbPing, redisPing, ext)
	srv := httpserver.NewServer(cfg, analyzeSvc, roleSvc, ext, dbCheck, redisCheck, tikaCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.Bool("llm_enabled", enricher != nil))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

// buildEnricher returns nil when no provider is enabled, which keeps the
// analysis keyword-only.
func buildEnricher(ctx context.Context, cfg config.Config, rdb *redis.Client) (domain.Enricher, error) {
	if !cfg.LLMEnabled() {
		slog.Info("llm enrichment disabled", slog.String("provider", cfg.Provider()))
		return nil, nil
	}
	var client domain.ChatClient
	switch cfg.Provider() {
	case config.ProviderGemini:
		c, err := gemini.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = c
	case config.ProviderOpenRouter:
		client = openrouter.New(cfg)
	default:
		return nil, fmt.Errorf("op=main.buildEnricher: unknown provider %q", cfg.Provider())
	}

	opts := []ai.Option{
		ai.WithBreaker(ai.NewCircuitBreaker(client.Provider(), cfg.LLMBreakerFailures, cfg.LLMBreakerCooldown)),
		ai.WithMaxPromptTokens(cfg.LLMMaxPromptTokens),
	}
	if rdb != nil && cfg.LLMRatePerMin > 0 {
		limiter := ratelimiter.NewRedisBucketLimiter(rdb, map[string]ratelimiter.BucketConfig{
			"llm:" + client.Provider(): ratelimiter.NewBucketConfigFromPerMinute(cfg.LLMRatePerMin),
		})
		opts = append(opts, ai.WithLimiter(limiter))
	}
	slog.Info("llm enrichment enabled", slog.String("provider", client.Provider()), slog.Int("rate_per_min", cfg.LLMRatePerMin))
	return ai.NewEnricher(client, opts...), nil
}
