// Command course-api serves the course generation pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/courseforge/course-engine/internal/api"
	"github.com/courseforge/course-engine/internal/cache"
	"github.com/courseforge/course-engine/internal/config"
	"github.com/courseforge/course-engine/internal/enrich"
	"github.com/courseforge/course-engine/internal/llm"
	"github.com/courseforge/course-engine/internal/observability"
	"github.com/courseforge/course-engine/internal/pipeline"
	"github.com/courseforge/course-engine/internal/planner"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "course-api",
	})

	store, err := buildStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize course store")
	}
	defer store.Close()

	completer := llm.NewClient(llm.Config{
		BaseURL:    cfg.Completion.BaseURL,
		APIKey:     cfg.Completion.APIKey,
		Model:      cfg.Completion.Model,
		Timeout:    cfg.Completion.Timeout,
		MaxRetries: cfg.Completion.MaxRetries,
		BaseDelay:  cfg.Completion.BaseDelay,
	}, logger)

	orch := pipeline.NewOrchestrator(
		planner.NewPlanner(completer, logger),
		enrich.NewEnricher(completer, logger),
		store,
		logger,
		cfg.Pipeline.BatchSize,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewServer(orch, cfg.Server, logger).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("course API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func buildStore(cfg *config.Config) (cache.CourseStore, error) {
	switch cfg.Cache.Driver {
	case "redis":
		return cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
			TTL:      cfg.Cache.TTL,
		})
	case "sqlite":
		return cache.NewSQLiteStore(cfg.Cache.SQLite.Path)
	default:
		return cache.NewMemoryStore(), nil
	}
}
