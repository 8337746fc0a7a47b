package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/bsc-scorecard/scorecard/internal/app"
	"github.com/bsc-scorecard/scorecard/internal/observability"
	"github.com/bsc-scorecard/scorecard/internal/platform/cache"
	"github.com/bsc-scorecard/scorecard/internal/scorecard"
	"github.com/bsc-scorecard/scorecard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if !cfg.RedisEnabled() {
		logger.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	dataset, err := scorecard.LoadSeed()
	if err != nil {
		logger.Error("load seed dataset", slog.Any("error", err))
		os.Exit(1)
	}
	service := scorecard.NewService(dataset, scorecard.NewCache(redisClient, cfg.CacheTTL), cfg.EpochWindow)

	metrics := observability.NewMetrics()
	jobMetrics := metrics.Jobs()
	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler()}
	go func() {
		logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		if err := metricsServer.Close(); err != nil {
			logger.Warn("worker metrics close", slog.Any("error", err))
		}
	}()

	riskJob := jobs.NewRiskScanJob(service, metrics, logger, jobMetrics)
	warmupJob := jobs.NewWarmupJob(service, logger, jobMetrics)

	riskTask, err := jobs.NewRiskScanTask(jobs.RiskScanPayload{})
	if err != nil {
		logger.Error("build risk scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskScorecardRiskScan, Handler: riskJob.Handle},
			{Type: jobs.TaskScorecardWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RiskScanCron, Task: riskTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
