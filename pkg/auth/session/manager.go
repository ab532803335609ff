// Package session tracks refresh sessions in Redis. Each access token id
// (the JWT jti) maps to one refresh token; an account can also be revoked as
// a whole when it is deactivated.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/callcenter-backend/pkg/config"
	"github.com/angelmondragon/callcenter-backend/pkg/redis"
)

// ErrInvalidRefreshToken covers unknown, reused, forged and revoked sessions
// alike; callers answer all of them with 401.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

var errBlankID = errors.New("session: id is required")

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	AccessSessionKey(accessID string) string
	AccountRevocationKey(accountID string) string
}

// AccessSessionChecker is the read side used by the auth middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
	IsAccountRevoked(ctx context.Context, accountID string) (bool, error)
}

type Manager struct {
	store store
	ttl   time.Duration
	now   func() time.Time
}

// Rotation is the outcome of a successful refresh.
type Rotation struct {
	AccountID    uuid.UUID
	AccessID     string
	RefreshToken string
}

// NewManager keeps sessions for the refresh TTL, which must outlive the
// access token it is paired with.
func NewManager(client *redis.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("session: redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if access := time.Duration(cfg.ExpirationMinutes) * time.Minute; ttl <= access {
		return nil, fmt.Errorf("session: refresh ttl %s must exceed access ttl %s", ttl, access)
	}
	return &Manager{store: client, ttl: ttl, now: time.Now}, nil
}

// NewAccessID mints the jti that keys a session.
func NewAccessID() string { return uuid.NewString() }

// Generate opens a session for accessID and returns its refresh token. A new
// login lifts any account-wide revocation.
func (m *Manager) Generate(ctx context.Context, accessID string, accountID uuid.UUID) (string, error) {
	if blank(accessID) || accountID == uuid.Nil {
		return "", errBlankID
	}
	token, err := m.put(ctx, accessID, accountID)
	if err != nil {
		return "", err
	}
	if err := m.store.Del(ctx, m.store.AccountRevocationKey(accountID.String())); err != nil {
		return "", fmt.Errorf("lift revocation: %w", err)
	}
	return token, nil
}

// Rotate trades a valid (accessID, refresh token) pair for a new pair. The old
// session is removed before the new one is written, so a token works once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Rotation, error) {
	if blank(oldAccessID) || blank(provided) {
		return Rotation{}, ErrInvalidRefreshToken
	}
	key := m.store.AccessSessionKey(oldAccessID)
	raw, err := m.store.Get(ctx, key)
	if errors.Is(err, goredis.Nil) {
		return Rotation{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Rotation{}, fmt.Errorf("load session: %w", err)
	}
	rec, err := decodeRecord(raw)
	if err != nil || !rec.matches(provided) {
		return Rotation{}, ErrInvalidRefreshToken
	}

	if err := m.store.Del(ctx, key); err != nil {
		return Rotation{}, fmt.Errorf("drop old session: %w", err)
	}
	revoked, err := m.IsAccountRevoked(ctx, rec.AccountID.String())
	if err != nil {
		return Rotation{}, err
	}
	if revoked {
		return Rotation{}, ErrInvalidRefreshToken
	}

	next := Rotation{AccountID: rec.AccountID, AccessID: NewAccessID()}
	if next.RefreshToken, err = m.put(ctx, next.AccessID, rec.AccountID); err != nil {
		return Rotation{}, err
	}
	return next, nil
}

// Revoke ends a single session (logout).
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errBlankID
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// RevokeAccount kills every outstanding session of a deactivated account for
// as long as any of them could still be refreshed.
func (m *Manager) RevokeAccount(ctx context.Context, accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return errBlankID
	}
	return m.store.Set(ctx, m.store.AccountRevocationKey(accountID.String()), "1", m.ttl)
}

func (m *Manager) IsAccountRevoked(ctx context.Context, accountID string) (bool, error) {
	if blank(accountID) {
		return false, errBlankID
	}
	return m.store.Exists(ctx, m.store.AccountRevocationKey(accountID))
}

// HasSession reports whether accessID was neither logged out nor rotated away.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errBlankID
	}
	return m.store.Exists(ctx, m.store.AccessSessionKey(accessID))
}

func (m *Manager) put(ctx context.Context, accessID string, accountID uuid.UUID) (string, error) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	rec, token, err := newRecord(accountID, now())
	if err != nil {
		return "", err
	}
	value, err := rec.encode()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), value, m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
