package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/callcenter-backend/internal/calls"
	"github.com/angelmondragon/callcenter-backend/internal/cron"
	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/db"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
	"github.com/angelmondragon/callcenter-backend/pkg/migrate"
	"github.com/angelmondragon/callcenter-backend/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: serviceName}).Error(context.Background(), "load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "cron worker stopped", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down")
}

// run wires the worker and blocks until ctx is cancelled. Returning instead of
// exiting lets the deferred closers run.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	loc, err := cfg.App.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeQuietly(logg, "database", dbClient.Close)
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer closeQuietly(logg, "redis", redisClient.Close)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	jobMetrics := metrics.NewCronJobMetrics(registry)

	callService, err := calls.NewService(calls.ServiceParams{
		Repo:      calls.NewRepository(dbClient.DB()),
		Retention: cfg.Cron.CallRetention,
	})
	if err != nil {
		return fmt.Errorf("calls service: %w", err)
	}
	tracker, err := tasks.NewTracker(tasks.TrackerParams{
		Repo:     tasks.NewRepository(dbClient.DB()),
		Location: loc,
	})
	if err != nil {
		return fmt.Errorf("task tracker: %w", err)
	}

	service, err := buildScheduler(cfg, logg, loc, redisClient, callService, tracker, jobMetrics)
	if err != nil {
		return err
	}

	if cfg.Cron.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Cron.MetricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics listener failed", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"service_kind": cfg.Service.Kind,
		"timezone":     loc.String(),
		"metrics_addr": cfg.Cron.MetricsAddr,
	})
	logg.Info(ctx, "cron worker started")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildScheduler(
	cfg *config.Config,
	logg *logger.Logger,
	loc *time.Location,
	redisClient *redis.Client,
	callService calls.Service,
	tracker *tasks.Tracker,
	jobMetrics *metrics.CronJobMetrics,
) (*cron.Service, error) {
	lock, err := cron.NewRedisLock(redisClient, serviceName, cfg.Cron.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("cron lock: %w", err)
	}
	retention, err := cron.NewCallRetentionJob(cron.CallRetentionJobParams{Logger: logg, Calls: callService, Metrics: jobMetrics})
	if err != nil {
		return nil, fmt.Errorf("call retention job: %w", err)
	}
	reset, err := cron.NewDailyTaskResetJob(cron.DailyTaskResetJobParams{Logger: logg, Tracker: tracker, Metrics: jobMetrics})
	if err != nil {
		return nil, fmt.Errorf("daily task reset job: %w", err)
	}
	jobs, err := cron.NewRegistry(retention, reset)
	if err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}
	return cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   jobs,
		Lock:       lock,
		Metrics:    jobMetrics,
		Location:   loc,
		RunOnStart: cfg.Cron.RunOnStart,
	})
}

func closeQuietly(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "close "+name, err)
	}
}
