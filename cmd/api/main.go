package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/callcenter-backend/api/routes"
	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	"github.com/angelmondragon/callcenter-backend/internal/analytics"
	"github.com/angelmondragon/callcenter-backend/internal/auth"
	"github.com/angelmondragon/callcenter-backend/internal/calls"
	"github.com/angelmondragon/callcenter-backend/internal/leads"
	"github.com/angelmondragon/callcenter-backend/internal/numberuploads"
	"github.com/angelmondragon/callcenter-backend/internal/reports"
	"github.com/angelmondragon/callcenter-backend/internal/tasks"
	"github.com/angelmondragon/callcenter-backend/pkg/auth/session"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/db"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
	"github.com/angelmondragon/callcenter-backend/pkg/migrate"
	"github.com/angelmondragon/callcenter-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	loc, err := cfg.App.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid timezone", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	activity := metrics.NewActivityMetrics(registry)

	accountRepo := accounts.NewRepository(dbClient.DB())
	callRepo := calls.NewRepository(dbClient.DB())
	leadRepo := leads.NewRepository(dbClient.DB())

	tracker, err := tasks.NewTracker(tasks.TrackerParams{
		Repo:     tasks.NewRepository(dbClient.DB()),
		Location: loc,
		Metrics:  activity,
	})
	exitOnErr(logg, "task tracker", err)

	authService, err := auth.NewService(auth.ServiceParams{
		AccountRepo:    accountRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	exitOnErr(logg, "auth service", err)

	accountService, err := accounts.NewService(accounts.ServiceParams{
		DB:             dbClient,
		Repo:           accountRepo,
		Sessions:       sessionManager,
		PasswordConfig: cfg.Password,
	})
	exitOnErr(logg, "accounts service", err)

	var adminRegister auth.AdminRegisterService
	if !cfg.App.IsProd() {
		adminRegister, err = auth.NewAdminRegisterService(accountService)
		exitOnErr(logg, "admin register service", err)
	}

	callService, err := calls.NewService(calls.ServiceParams{
		Repo:      callRepo,
		Metrics:   activity,
		Retention: cfg.Cron.CallRetention,
	})
	exitOnErr(logg, "calls service", err)

	leadService, err := leads.NewService(leads.ServiceParams{
		DB:       dbClient,
		Repo:     leadRepo,
		Accounts: accountRepo,
		Tracker:  tracker,
		Metrics:  activity,
	})
	exitOnErr(logg, "leads service", err)

	reportService, err := reports.NewService(reports.ServiceParams{
		DB:       dbClient,
		Repo:     reports.NewRepository(dbClient.DB()),
		Tracker:  tracker,
		Metrics:  activity,
		Location: loc,
	})
	exitOnErr(logg, "reports service", err)

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		DB:       dbClient.DB(),
		Leads:    leadRepo,
		Calls:    callRepo,
		Accounts: accountRepo,
	})
	exitOnErr(logg, "analytics service", err)

	uploadService, err := numberuploads.NewService(numberuploads.ServiceParams{
		Repo:       numberuploads.NewRepository(dbClient.DB()),
		Accounts:   accountRepo,
		MaxNumbers: cfg.Uploads.MaxNumbers,
	})
	exitOnErr(logg, "number uploads service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": loc.String(),
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:            dbClient,
			Redis:         redisClient,
			Sessions:      sessionManager,
			Gatherer:      registry,
			HTTP:          metrics.NewHTTPMetrics(registry),
			Auth:          authService,
			AdminRegister: adminRegister,
			Accounts:      accountService,
			Calls:         callService,
			Leads:         leadService,
			Reports:       reportService,
			Tasks:         tracker,
			Analytics:     analyticsService,
			NumberUploads: uploadService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGracePeriod)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOnErr(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name, err)
	os.Exit(1)
}
