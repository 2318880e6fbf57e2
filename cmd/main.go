package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/codearena.net/internal/adapter/memory"
	"gitlab.com/codearena.net/internal/adapter/postgres/jobarchive"
	"gitlab.com/codearena.net/internal/adapter/rabbitmq"
	resultstore2 "gitlab.com/codearena.net/internal/adapter/redis/resultstore"
	"gitlab.com/codearena.net/internal/adapter/sandbox"
	"gitlab.com/codearena.net/internal/config"
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/core/services/execution"
	"gitlab.com/codearena.net/internal/core/services/grader"
	"gitlab.com/codearena.net/internal/core/services/worker"
	logger2 "gitlab.com/codearena.net/internal/global/logger"
	http2 "gitlab.com/codearena.net/internal/http"
)

func main() {
	// Env files are optional; in containers everything arrives as real
	// environment variables.
	if err := godotenv.Load(); err != nil {
		logger2.Debug("No .env file loaded", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger := logger2.Logger
	logger.Info("Starting code execution service")

	sysCfg := config.NewSystemConfig()

	// SECONDARY PORTS
	store, closeStore := setupResultStore(sysCfg, logger)
	defer closeStore()

	queue, err := rabbitmq.Connect(sysCfg.RabbitMQConfig, logger)
	if err != nil {
		logger.Error("Failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	archive := setupArchive(sysCfg, logger)

	runner := sandbox.NewRunner(sysCfg.ExecutorConfig, logger)

	// services
	graderSvc := grader.NewGraderService(runner, logger)
	executionSvc := execution.NewExecutionService(queue, store, runner, archive, logger)
	serviceProvider := http2.NewServiceProvider(executionSvc)

	ctxBg := context.Background()
	workerCtx, stopWorkers := context.WithCancel(ctxBg)
	pool := worker.NewPool(queue, graderSvc, store, archive, logger,
		sysCfg.ExecutorConfig.WorkerPoolSize, sysCfg.RabbitMQConfig.MaxRetries)
	if err := pool.Start(workerCtx); err != nil {
		logger.Error("Failed to start worker pool", "error", err)
		os.Exit(1)
	}

	// server
	httpServer := http2.NewServer(sysCfg.ServerConfig.Port, sysCfg.ServerConfig.ServiceName, *serviceProvider, logger)
	if err := httpServer.Init(); err != nil {
		logger.Error("Failed to init http server", "error", err)
		os.Exit(1)
	}
	httpServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctxBg, 15*time.Second)
	defer cancel()
	httpServer.Stop(ctx)
	stopWorkers()
	pool.Wait()

	logger.Info("successfully shutdown server")
}

// setupResultStore prefers Redis so multiple instances share job state;
// when Redis is unreachable a single-instance in-memory store keeps the
// service usable in development.
func setupResultStore(cfg *config.AppConfig, logger primary.Logger) (secondary.ResultStore, func()) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, using in-memory result store", "addr", cfg.RedisConfig.Addr, "error", err)
		redisClient.Close()
		store := memory.NewResultStore(cfg.RedisConfig.ResultTTL)
		return store, store.Close
	}

	store := resultstore2.NewResultStore(redisClient, cfg.RedisConfig.ResultTTL, logger)
	return store, func() { redisClient.Close() }
}

// setupArchive returns nil when no DATABASE_URL is configured; the
// archive is best-effort and the grading path never depends on it.
func setupArchive(cfg *config.AppConfig, logger primary.Logger) secondary.JobArchive {
	if cfg.PostgresConfig.Url == "" {
		return nil
	}

	db, err := sqlx.Open("postgres", cfg.PostgresConfig.Url)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		return nil
	}
	if err := db.Ping(); err != nil {
		logger.Error("Failed to reach database, archive disabled", "error", err)
		db.Close()
		return nil
	}

	archive := jobarchive.NewJobArchive(db, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.Migrate(ctx); err != nil {
		logger.Error("Failed to migrate archive schema", "error", err)
		db.Close()
		return nil
	}
	return archive
}
