package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	"github.com/angelmondragon/callcenter-backend/internal/auth"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/auth/session"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	"github.com/angelmondragon/callcenter-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubRedis struct {
	stubPinger
}

func (stubRedis) Get(context.Context, string) (string, error) { return "", nil }

func (stubRedis) Set(context.Context, string, any, time.Duration) error { return nil }

func (stubRedis) SetNX(context.Context, string, any, time.Duration) (bool, error) { return true, nil }

func (stubRedis) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (stubRedis) Del(context.Context, ...string) error { return nil }

func (stubRedis) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return true, 1, nil
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

func (stubSessions) IsAccountRevoked(context.Context, string) (bool, error) { return false, nil }

type stubAccounts struct {
	accounts.Service
}

func (stubAccounts) Get(ctx context.Context, id uuid.UUID) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: id, Name: "Dana", Role: enums.AccountRoleCCAgent, IsActive: true}, nil
}

type stubRegister struct{}

func (stubRegister) Register(ctx context.Context, req auth.AdminRegisterRequest) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: uuid.New(), Email: req.Email, Role: enums.AccountRoleSuperAdmin, IsActive: true}, nil
}

var _ session.AccessSessionChecker = stubSessions{}

func testConfig(env string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
		HTTP: config.HTTPConfig{
			RequestsPerMinute: 1000,
			AllowedOrigins:    []string{"*"},
			IdempotencyTTL:    time.Hour,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 10,
			LoginIPLimit:    10,
		},
	}
}

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(testConfig(env), nil, Dependencies{
		DB:            stubPinger{},
		Redis:         stubRedis{},
		Sessions:      stubSessions{},
		Gatherer:      reg,
		HTTP:          metrics.NewHTTPMetrics(reg),
		Accounts:      stubAccounts{},
		AdminRegister: stubRegister{},
	})
}

func tokenFor(t *testing.T, role enums.AccountRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig("dev").JWT, time.Now(), pkgAuth.AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      role,
		JTI:       session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, "dev")

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterRoleGates(t *testing.T) {
	router := newTestRouter(t, "dev")
	callID := uuid.NewString()

	cases := []struct {
		name   string
		method string
		path   string
		role   enums.AccountRole
		want   int
	}{
		{name: "me requires token", method: http.MethodGet, path: "/api/v1/me", want: http.StatusUnauthorized},
		{name: "me for cc agent", method: http.MethodGet, path: "/api/v1/me", role: enums.AccountRoleCCAgent, want: http.StatusOK},
		{name: "received leads for cro only", method: http.MethodGet, path: "/api/v1/leads/received", role: enums.AccountRoleCCAgent, want: http.StatusForbidden},
		{name: "cro cannot log calls", method: http.MethodPatch, path: "/api/v1/calls/" + callID, role: enums.AccountRoleCROAgent, want: http.StatusForbidden},
		{name: "cro cannot list cro agents", method: http.MethodGet, path: "/api/v1/accounts/cro-agents", role: enums.AccountRoleCROAgent, want: http.StatusForbidden},
		{name: "admin surface rejects cc agent", method: http.MethodGet, path: "/api/admin/v1/accounts", role: enums.AccountRoleCCAgent, want: http.StatusForbidden},
		{name: "admin surface requires token", method: http.MethodGet, path: "/api/admin/v1/analytics/leads", want: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.role != "" {
				req.Header.Set("Authorization", "Bearer "+tokenFor(t, tc.role))
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestRouterIdempotencyRequiredForLeadCreate(t *testing.T) {
	router := newTestRouter(t, "dev")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, enums.AccountRoleCCAgent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Idempotency-Key") {
		t.Fatalf("expected idempotency error, got %s", resp.Body.String())
	}
}

func TestRouterAdminRegisterOutsideProd(t *testing.T) {
	body := `{"name":"Root","email":"root@example.com","password":"supersecret"}`

	dev := newTestRouter(t, "dev")
	resp := httptest.NewRecorder()
	dev.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 in dev got %d: %s", resp.Code, resp.Body.String())
	}

	prod := newTestRouter(t, config.AppEnvProd)
	resp = httptest.NewRecorder()
	prod.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", strings.NewReader(body)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected register to be unmounted in prod, got %d", resp.Code)
	}
}
