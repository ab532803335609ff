package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/callcenter-backend/internal/auth"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/auth/session"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}

type stubAuthService struct {
	loginErr      error
	lastLogin     auth.LoginRequest
	lastRefreshID string
	lastRefresh   string
	lastLogoutID  string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	s.lastLogin = req
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, accessID, refreshToken string) (*auth.TokenResponse, error) {
	s.lastRefreshID = accessID
	s.lastRefresh = refreshToken
	return &auth.TokenResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.lastLogoutID = accessID
	return nil
}

func mintTestToken(t *testing.T, now time.Time) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(testJWT, now, pkgAuth.AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.AccountRoleCCAgent,
		JTI:       accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, accessID
}

func TestAuthLoginSetsHeader(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.co","password":"pw"}`))
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get(accessTokenHeader) != "access" {
		t.Fatalf("expected access token header")
	}
	if svc.lastLogin.Email != "a@b.co" {
		t.Fatalf("expected email forwarded")
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.co","password":"pw"}`))
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLoginValidatesEmail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"nope","password":"pw"}`))
	rec := httptest.NewRecorder()
	AuthLogin(&stubAuthService{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	svc := &stubAuthService{}
	token, jti := mintTestToken(t, time.Now().Add(-time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthLogout(svc, testJWT, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastLogoutID != jti {
		t.Fatalf("expected revoked %s got %s", jti, svc.lastLogoutID)
	}
}

func TestAuthRefreshForwardsSession(t *testing.T) {
	svc := &stubAuthService{}
	token, jti := mintTestToken(t, time.Now())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"old"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthRefresh(svc, testJWT, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastRefreshID != jti || svc.lastRefresh != "old" {
		t.Fatalf("unexpected refresh args %s %s", svc.lastRefreshID, svc.lastRefresh)
	}
	if rec.Header().Get(accessTokenHeader) != "new-access" {
		t.Fatalf("expected new access token header")
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"old"}`))
	rec := httptest.NewRecorder()
	AuthRefresh(&stubAuthService{}, testJWT, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
