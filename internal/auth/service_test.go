package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/callcenter-backend/internal/accounts"
	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/auth/session"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/db/models"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "callcenter",
	ExpirationMinutes: 30,
}

func TestServiceLoginMintsRoleClaim(t *testing.T) {
	password := "agent-secret"
	account := newAccount(t, password, enums.AccountRoleCROAgent, true)
	repo := &stubAccountRepo{account: account}
	sessions := &stubSessionManager{}

	svc := buildTestService(t, repo, sessions)
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "  CRO@Example.com ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.AccountRoleCROAgent {
		t.Fatalf("expected cro role claim, got %s", claims.Role)
	}
	if claims.AccountID != account.ID {
		t.Fatalf("unexpected account id %s", claims.AccountID)
	}
	if claims.ID != sessions.generatedAccessID {
		t.Fatalf("expected jti to match stored session id")
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if repo.lastLogin == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.Account.LastLoginAt == nil {
		t.Fatalf("expected response to carry last login")
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	account := newAccount(t, "right-password", enums.AccountRoleCCAgent, true)
	inactive := newAccount(t, "right-password", enums.AccountRoleCCAgent, false)

	cases := []struct {
		name    string
		account *models.Account
		req     LoginRequest
	}{
		{"wrong password", account, LoginRequest{Email: "cc@example.com", Password: "nope"}},
		{"unknown email", nil, LoginRequest{Email: "ghost@example.com", Password: "right-password"}},
		{"inactive", inactive, LoginRequest{Email: "cc@example.com", Password: "right-password"}},
		{"blank email", account, LoginRequest{Email: "  ", Password: "right-password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &stubSessionManager{}
			svc := buildTestService(t, &stubAccountRepo{account: tc.account}, sessions)
			_, err := svc.Login(context.Background(), tc.req)
			if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if sessions.generatedAccessID != "" {
				t.Fatalf("expected no session to be created")
			}
		})
	}
}

func TestServiceRefreshReloadsAccount(t *testing.T) {
	account := newAccount(t, "whatever-pass", enums.AccountRoleCCAgent, true)
	repo := &stubAccountRepo{account: account}
	sessions := &stubSessionManager{rotation: session.Rotation{AccountID: account.ID, AccessID: "new-access", RefreshToken: "new-refresh"}}
	svc := buildTestService(t, repo, sessions)

	// Role changed since the original login.
	account.Role = enums.AccountRoleCROAgent

	resp, err := svc.Refresh(context.Background(), "old-access", "old-refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != enums.AccountRoleCROAgent || claims.ID != "new-access" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if resp.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
}

func TestServiceRefreshRejectsInactiveAccount(t *testing.T) {
	account := newAccount(t, "whatever-pass", enums.AccountRoleCCAgent, false)
	sessions := &stubSessionManager{rotation: session.Rotation{AccountID: account.ID, AccessID: "new-access", RefreshToken: "r"}}
	svc := buildTestService(t, &stubAccountRepo{account: account}, sessions)

	_, err := svc.Refresh(context.Background(), "old", "r")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "new-access" {
		t.Fatalf("expected rotated session to be revoked, got %v", sessions.revoked)
	}
}

func TestServiceRefreshInvalidToken(t *testing.T) {
	sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := buildTestService(t, &stubAccountRepo{}, sessions)

	_, err := svc.Refresh(context.Background(), "old", "bad")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	sessions.rotateErr = errors.New("redis down")
	_, err = svc.Refresh(context.Background(), "old", "bad")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := buildTestService(t, &stubAccountRepo{}, sessions)

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("expected access-1 revoked, got %v", sessions.revoked)
	}
	if err := svc.Logout(context.Background(), ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for blank session, got %v", err)
	}
}

type stubAccountCreator struct {
	input accounts.CreateInput
}

func (s *stubAccountCreator) Create(_ context.Context, input accounts.CreateInput) (*accounts.CreateResult, error) {
	s.input = input
	return &accounts.CreateResult{Account: &accounts.AccountDTO{ID: uuid.New(), Email: input.Email, Role: input.Role}}, nil
}

func TestAdminRegisterCreatesSuperAdmin(t *testing.T) {
	creator := &stubAccountCreator{}
	svc, err := NewAdminRegisterService(creator)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := svc.Register(context.Background(), AdminRegisterRequest{Name: "Root", Email: "root@example.com", Password: "bootstrap-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.Role != enums.AccountRoleSuperAdmin || creator.input.Role != enums.AccountRoleSuperAdmin {
		t.Fatalf("expected super admin role, got %s", out.Role)
	}
	if creator.input.Password != "bootstrap-pass" {
		t.Fatalf("expected password to be forwarded")
	}
}

func buildTestService(t *testing.T, repo *stubAccountRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		AccountRepo:    repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		Clock:          time.Now,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func newAccount(t *testing.T, password string, role enums.AccountRole, active bool) *models.Account {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    64,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	email := "cc@example.com"
	if role == enums.AccountRoleCROAgent {
		email = "cro@example.com"
	}
	return &models.Account{
		ID:           uuid.New(),
		Name:         "Agent",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
}

type stubAccountRepo struct {
	account   *models.Account
	lastLogin *time.Time
}

func (s *stubAccountRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	if s.account == nil || s.account.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.account, nil
}

func (s *stubAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.account, nil
}

func (s *stubAccountRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

type stubSessionManager struct {
	generatedAccessID string
	rotation          session.Rotation
	rotateErr         error
	revoked           []string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string, _ uuid.UUID) (string, error) {
	s.generatedAccessID = accessID
	return "refresh-token", nil
}

func (s *stubSessionManager) Rotate(context.Context, string, string) (session.Rotation, error) {
	if s.rotateErr != nil {
		return session.Rotation{}, s.rotateErr
	}
	return s.rotation, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}
