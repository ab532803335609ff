package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/callcenter-backend/api/controllers"
	"github.com/angelmondragon/callcenter-backend/api/middleware"
	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	"github.com/angelmondragon/callcenter-backend/internal/analytics"
	"github.com/angelmondragon/callcenter-backend/internal/auth"
	"github.com/angelmondragon/callcenter-backend/internal/calls"
	"github.com/angelmondragon/callcenter-backend/internal/leads"
	"github.com/angelmondragon/callcenter-backend/internal/numberuploads"
	"github.com/angelmondragon/callcenter-backend/internal/reports"
	"github.com/angelmondragon/callcenter-backend/pkg/auth/session"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/callcenter-backend/pkg/redis"
)

// redisStore is what the router needs from Redis: idempotency records,
// login counters and a readiness ping.
type redisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	controllers.Pinger
}

// Dependencies are the services and infrastructure mounted by NewRouter.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    redisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth          auth.Service
	AdminRegister auth.AdminRegisterService
	Accounts      accounts.Service
	Calls         calls.Service
	Leads         leads.Service
	Reports       reports.Service
	Tasks         controllers.TaskReader
	Analytics     analytics.Service
	NumberUploads numberuploads.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTP),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)

	throttle := httprate.LimitByIP(requestsPerMinute(cfg.HTTP.RequestsPerMinute), time.Minute)
	var loc *time.Location
	if deps.Tasks != nil {
		loc = deps.Tasks.Location()
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(cfg.AuthRateLimit, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(throttle).Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.With(throttle).Post("/refresh", controllers.AuthRefresh(deps.Auth, cfg.JWT, logg))
	})

	if !cfg.App.IsProd() {
		r.With(throttle).Post("/api/admin/v1/auth/register", controllers.AdminAuthRegister(deps.AdminRegister, logg))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(throttle)
		r.Use(middleware.Idempotency(deps.Redis, cfg.HTTP.IdempotencyTTL, logg))

		r.Get("/me", controllers.Me(deps.Accounts, logg))
		r.Get("/analytics", controllers.AnalyticsSummary(deps.Analytics, logg))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", controllers.TasksHistory(deps.Tasks, logg))
			r.Get("/today", controllers.TasksToday(deps.Tasks, logg))
		})

		r.Route("/calls", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.AccountRoleCCAgent, enums.AccountRoleSuperAdmin))
			r.Get("/", controllers.CallsList(deps.Calls, logg))
			r.Post("/", controllers.CallsCreate(deps.Calls, logg))
			r.Patch("/{callId}", controllers.CallsUpdateCategory(deps.Calls, logg))
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", controllers.LeadsListOwn(deps.Leads, logg))
			r.With(middleware.RequireRole(logg, enums.AccountRoleCROAgent)).Get("/received", controllers.LeadsListReceived(deps.Leads, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.AccountRoleCCAgent))
				r.Post("/", controllers.LeadsCreate(deps.Leads, logg))
				r.Patch("/{leadId}", controllers.LeadsUpdate(deps.Leads, logg))
				r.Delete("/{leadId}", controllers.LeadsDelete(deps.Leads, logg))
				r.Post("/{leadId}/transfer", controllers.LeadsTransfer(deps.Leads, logg))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", controllers.ReportsList(deps.Reports, logg))
			r.With(middleware.RequireRole(logg, enums.AccountRoleCCAgent)).Post("/", controllers.ReportsSubmit(deps.Reports, logg))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.AccountRoleCCAgent)).Get("/cro-agents", controllers.AccountsByRole(deps.Accounts, enums.AccountRoleCROAgent, logg))
			r.Patch("/{accountId}", controllers.AccountsUpdate(deps.Accounts, logg))
		})

		r.With(middleware.RequireRole(logg, enums.AccountRoleCCAgent)).Get("/number-uploads/assigned", controllers.NumberUploadsList(deps.NumberUploads, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.AccountRoleSuperAdmin))
		r.Use(throttle)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", controllers.AdminAccountsList(deps.Accounts, logg))
			r.Post("/", controllers.AdminAccountsCreate(deps.Accounts, logg))
			r.Get("/cc-agents", controllers.AccountsByRole(deps.Accounts, enums.AccountRoleCCAgent, logg))
			r.Delete("/{accountId}", controllers.AdminAccountsDeactivate(deps.Accounts, logg))
		})
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/leads", controllers.AdminAnalyticsLeads(deps.Analytics, logg))
			r.Get("/reports", controllers.AdminAnalyticsReports(deps.Analytics, loc, logg))
		})
		r.Route("/number-uploads", func(r chi.Router) {
			r.Get("/", controllers.NumberUploadsList(deps.NumberUploads, logg))
			r.Post("/", controllers.AdminNumberUploadsCreate(deps.NumberUploads, cfg.Uploads.MaxUploadBytes(), logg))
		})
	})

	return r
}

func requestsPerMinute(n int) int {
	if n <= 0 {
		return 300
	}
	return n
}
