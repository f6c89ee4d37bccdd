package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/praxisgrid/veritas/internal/aidetect"
	"github.com/praxisgrid/veritas/internal/api"
	"github.com/praxisgrid/veritas/internal/config"
	"github.com/praxisgrid/veritas/internal/configs/env"
	"github.com/praxisgrid/veritas/internal/engine"
	redisInfra "github.com/praxisgrid/veritas/internal/infra/redis"
	"github.com/praxisgrid/veritas/internal/judge"
	"github.com/praxisgrid/veritas/internal/logger"
	"github.com/praxisgrid/veritas/internal/metrics"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting VERITAS server")

	// Initialize Prometheus metrics
	metrics.InitPrometheus()
	log.Info().Msg("Prometheus metrics initialized")

	// Metrics server on its own port
	metricsServer := api.StartMetricsServer("2112")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The semantic judge needs Gemini credentials. Verdict caching through
	// Redis is optional and turned on by setting REDIS_HOST. Without
	// credentials the engine scores on local layers only.
	var semanticJudge engine.SemanticJudge
	if cfg.GeminiAPIKey != "" {
		var verdictCache *judge.Cache
		if cfg.RedisHost != "" {
			redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create Redis client")
			}
			defer redisClient.Close()
			verdictCache = judge.NewCache(redisClient, cfg.JudgeCacheTTL)
		} else {
			log.Info().Msg("REDIS_HOST not set, judge verdict cache disabled")
		}

		semanticJudge = judge.NewGeminiJudge(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.JudgeTimeout, verdictCache)
		log.Info().Str("model", cfg.GeminiModel).Msg("Semantic judge initialized")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, semantic judge disabled")
	}

	var aiDetector engine.AIDetector
	if cfg.AIDetectorEnabled {
		aiDetector = aidetect.New()
	}

	// Initialize worker pool
	workerPool := engine.NewWorkerPool(ctx, cfg.BatchWorkers)
	defer workerPool.Close()

	detector := engine.NewDetector(engine.Config{
		SuspiciousThreshold: cfg.SuspiciousThreshold,
		HighThreshold:       cfg.HighThreshold,
	}, semanticJudge, aiDetector)
	batch := engine.NewBatchRunner(detector, workerPool)

	router := api.SetupRoutes(cfg, detector, batch)

	// Start Gin server - Gin handles all HTTP routing, middleware (auth, rate limiter), and request processing
	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	// Shutdown Gin server gracefully
	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	// Shutdown metrics server gracefully
	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
