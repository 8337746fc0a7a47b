package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/bsc-scorecard/scorecard/internal/app"
	"github.com/bsc-scorecard/scorecard/internal/auth"
	"github.com/bsc-scorecard/scorecard/internal/observability"
	"github.com/bsc-scorecard/scorecard/internal/platform/cache"
	"github.com/bsc-scorecard/scorecard/internal/scorecard"
	scorecardhttp "github.com/bsc-scorecard/scorecard/internal/scorecard/http"
	"github.com/bsc-scorecard/scorecard/internal/scorecard/svg"
	"github.com/bsc-scorecard/scorecard/internal/shared"
	"github.com/bsc-scorecard/scorecard/internal/upload"
	"github.com/bsc-scorecard/scorecard/internal/view"
	"github.com/bsc-scorecard/scorecard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	var (
		redisClient  *redis.Client
		sessionStore shared.SessionStore = shared.NewMemoryStore()
		jobHandler                       = jobs.NewHandler(nil, logger)
	)
	if cfg.RedisEnabled() {
		redisClient, err = cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis ping", slog.Any("error", err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		sessionStore = shared.NewRedisStore(redisClient)

		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	} else {
		logger.Info("redis not configured, using in-memory sessions without snapshot cache")
	}

	sessionManager := shared.NewSessionManager(sessionStore, "bsc_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo, err := auth.NewStaticRepository(auth.Credentials{Username: cfg.AuthUsername, Password: cfg.AuthPassword})
	if err != nil {
		logger.Error("init credentials", slog.Any("error", err))
		os.Exit(1)
	}
	authHandler := auth.NewHandler(logger, auth.NewService(authRepo), templates, sessionManager, csrfManager, cfg.LoginDelay)

	dataset, err := scorecard.LoadSeed()
	if err != nil {
		logger.Error("load seed dataset", slog.Any("error", err))
		os.Exit(1)
	}
	scorecardService := scorecard.NewService(dataset, scorecard.NewCache(redisClient, cfg.CacheTTL), cfg.EpochWindow)

	metrics := observability.NewMetrics()
	renderers := svg.Renderer{}
	scorecardHandler := scorecardhttp.NewHandler(scorecardhttp.HandlerConfig{
		Logger:    logger,
		Service:   scorecardService,
		Templates: templates,
		CSRF:      csrfManager,
		Line:      renderers,
		Bar:       renderers,
		Sparkline: renderers,
		Radar:     renderers,
		Uploads:   upload.NewParser(cfg.UploadMaxRows),
		Metrics:   metrics,
		MaxUpload: cfg.UploadMaxBytes,
	})

	if cfg.RedisEnabled() {
		enqueueWarmup(ctx, cfg, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		ScorecardHandler: scorecardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func enqueueWarmup(ctx context.Context, cfg *app.Config, logger *slog.Logger) {
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	info, err := client.EnqueueWarmup(ctx, jobs.WarmupPayload{})
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		logger.Info("snapshot warmup already queued")
	case err != nil:
		logger.Warn("enqueue snapshot warmup", slog.Any("error", err))
	default:
		logger.Info("snapshot warmup queued", slog.String("task_id", info.ID))
	}
}
