// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-ai-planner/internal/config"
	"travel-ai-planner/internal/domain/ports/adapter"
	aiAdapters "travel-ai-planner/internal/infra/adapters/ai"
	imageAdapters "travel-ai-planner/internal/infra/adapters/image"
	pg "travel-ai-planner/internal/infra/db/postgres"
	"travel-ai-planner/internal/infra/logging"
	"travel-ai-planner/internal/infra/metrics"
	"travel-ai-planner/internal/infra/notify"
	"travel-ai-planner/internal/infra/queue"
	red "travel-ai-planner/internal/infra/redis"
	"travel-ai-planner/internal/infra/telemetry"
	"travel-ai-planner/internal/infra/web"
	"travel-ai-planner/internal/infra/worker"
	"travel-ai-planner/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	statusStore := red.NewStatusStore(redisClient, cfg.Generation.StatusTTL)
	resultCache := red.NewResultCache(redisClient, cfg.Generation.ResultTTL)
	rateLimiter := red.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// ---- Repositories ----
	aiCacheRepo := pg.NewAICacheRepo(pool)
	itineraryRepo := pg.NewItineraryRepo(pool)

	// ---- AI providers (failover order from config) ----
	var providers []adapter.AIServiceAdapter
	for _, name := range cfg.AI.ProviderOrder {
		switch name {
		case "openai":
			if cfg.AI.OpenAIKey == "" {
				continue
			}
			p, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.DefaultModel)
			if err != nil {
				logger.Fatal().Err(err).Msg("openai adapter init failed")
			}
			providers = append(providers, p)
		case "gemini":
			if cfg.AI.GeminiKey == "" {
				continue
			}
			p, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
			if err != nil {
				logger.Fatal().Err(err).Msg("gemini adapter init failed")
			}
			providers = append(providers, p)
		default:
			logger.Warn().Str("provider", name).Msg("unknown provider in ai.provider_order, skipping")
		}
	}
	failover, err := aiAdapters.NewFailoverAIAdapter(providers, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("no usable AI providers")
	}
	ai := aiAdapters.NewLimitedAI(failover, cfg.AI.ConcurrentLimit)

	imageAdapter := imageAdapters.NewHTTPImageAdapter(cfg.Image.BaseURL, cfg.Image.APIKey)

	// ---- Pipeline ----
	hub := notify.NewHub(logger)
	jobQueue := queue.NewPlanJobQueue()
	generator := usecase.NewPlanGenerator(aiCacheRepo, ai, cfg.AI.DefaultModel, cfg.ResponseCache.TTL, logger)
	usageRecorder := telemetry.NewRecorder("chat", logger)
	chatUC := usecase.NewStreamChatUseCase(rateLimiter, ai, hub, usageRecorder, cfg.AI.DefaultModel, logger)

	planWorker := worker.NewPlanGenerationWorker(
		jobQueue, statusStore, resultCache, itineraryRepo, generator, imageAdapter, hub, logger)
	go func() {
		if err := planWorker.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("plan worker stopped with error")
		}
	}()

	cleanup := worker.NewCacheCleanupWorker(
		cfg.ResponseCache.SweepInterval, cfg.ResponseCache.SweepStartDelay, aiCacheRepo, logger)
	go func() { _ = cleanup.Run(ctx) }()

	// ---- HTTP ----
	srv := web.NewServer(jobQueue, statusStore, resultCache, itineraryRepo, chatUC, hub, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	jobQueue.Close()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
