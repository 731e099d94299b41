package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/auth"
	"github.com/budgetpilot/budgetpilot/internal/cache"
	"github.com/budgetpilot/budgetpilot/internal/database"
	"github.com/budgetpilot/budgetpilot/internal/health"
	"github.com/budgetpilot/budgetpilot/internal/httpapi"
	"github.com/budgetpilot/budgetpilot/internal/jobs"
	"github.com/budgetpilot/budgetpilot/internal/jobs/handlers"
	"github.com/budgetpilot/budgetpilot/internal/lifecycle"
	"github.com/budgetpilot/budgetpilot/internal/middleware"
	"github.com/budgetpilot/budgetpilot/internal/notify"
	"github.com/budgetpilot/budgetpilot/internal/ratelimit"
	"github.com/budgetpilot/budgetpilot/internal/repository"
	"github.com/budgetpilot/budgetpilot/internal/scrape"
	"github.com/budgetpilot/budgetpilot/pkg/config"
	"github.com/budgetpilot/budgetpilot/pkg/logger"
	pkgredis "github.com/budgetpilot/budgetpilot/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "budgetd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	log.Info("starting budgetd",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.HTTP.Port),
		slog.String("log_level", cfg.Logger.Level))

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	config.Watch(v, log, func(next *config.Config) {
		log.Info("configuration updated, connection settings apply on restart")
	})

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	rdb, err := pkgredis.New(ctx, pkgredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	store := cache.NewRedisStore(rdb.Client, cfg.Scrape.CacheTTL)
	httpClient := scrape.NewHTTPClient(cfg.Scrape.Timeout)

	gas := scrape.NewGasFetcher(httpClient, store, cfg.Scrape.SearchBaseURL, cfg.Scrape.SearchAPIKey, log)
	transit := scrape.NewTransitFetcher(httpClient, store, cfg.Scrape.CostOfLivingBaseURL, cfg.Scrape.TransitBaseURL, log)
	grocery := scrape.NewGroceryFetcher(httpClient, store, cfg.Scrape.CostOfLivingBaseURL, log)
	poi := scrape.NewPOIFetcher(httpClient, store, cfg.Scrape.OverpassBaseURL, cfg.Scrape.PacingWait, log)
	aggregator := scrape.NewAggregator(gas, transit, grocery, poi, log)

	repo := repository.NewBudgetRepository(db, log)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram, log)
		if err != nil {
			return fmt.Errorf("init telegram notifier: %w", err)
		}
		notifier = tg
		checker.AddCheck("telegram", tg)
	}

	rules := ratelimit.NewRules(cfg.RateLimit)
	memoryLimiter := ratelimit.NewMemoryLimiter(log)
	limiter := ratelimit.NewAdaptiveLimiter(
		ratelimit.NewRedisLimiter(rdb.Client, log),
		memoryLimiter,
		log,
	)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, rules, log)

	cleaner := ratelimit.NewCleaner(rdb.Client, memoryLimiter, log, cfg.RateLimit.CleanupInterval)
	go cleaner.Run(ctx)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	worker := jobs.NewWorker(redisOpt, map[string]int{
		jobs.QueueCritical: 6,
		jobs.QueueDefault:  3,
		jobs.QueueLow:      1,
	}, log)
	worker.RegisterHandler(jobs.TaskTypeDriftCheck,
		handlers.NewDriftCheckHandler(repo, aggregator, notifier, cfg.Scheduler.DriftThreshold, log))

	go func() {
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped", slog.Any("error", err))
		}
	}()

	scheduler := jobs.NewScheduler(redisOpt, log)
	if err := scheduler.RegisterTasks(cfg.Scheduler.Interval); err != nil {
		return fmt.Errorf("register scheduled tasks: %w", err)
	}
	scheduler.Run()

	manager := jobs.NewManager(redisOpt, log)
	go enqueueInitialDriftCheck(ctx, manager, cfg.Scheduler.InitialDelay, log)

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	shutdown.Register("jobs-manager", func(context.Context) error {
		return manager.Close()
	})
	shutdown.Register("redis", func(context.Context) error {
		return rdb.Close()
	})
	shutdown.Register("postgres", func(context.Context) error {
		return db.Close()
	})

	errHandler := apperr.NewHandler(log, cfg.Sentry.Enabled)
	apiServer := httpapi.NewServer(repo, aggregator, verifier, checker, errHandler, log)
	serveErr := apiServer.Graceful(cfg.HTTP, rateLimitMw).ListenAndServe(ctx)
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("budgetd stopped")
	return serveErr
}

// enqueueInitialDriftCheck schedules one drift pass shortly after boot so a
// restarted instance does not wait a full interval before re-pricing.
func enqueueInitialDriftCheck(ctx context.Context, manager jobs.Manager, delay time.Duration, log *slog.Logger) {
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return
	}

	task, err := jobs.NewDriftCheckTask("startup")
	if err != nil {
		log.Error("failed to build startup drift task", slog.Any("error", err))
		return
	}

	if _, err := manager.Enqueue(ctx, task, asynq.Queue(jobs.QueueDefault)); err != nil {
		log.Error("failed to enqueue startup drift task", slog.Any("error", err))
		return
	}

	log.Info("startup drift check enqueued")
}
