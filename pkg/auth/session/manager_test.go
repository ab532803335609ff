package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func (m *mockStore) AccountRevocationKey(accountID string) string {
	return fmt.Sprintf("revoked:%s", accountID)
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, ttl: time.Hour}, store
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	accountID := uuid.New()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID, accountID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ok, err := manager.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected session, got %v %v", ok, err)
	}

	rotation, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotation.AccountID != accountID {
		t.Fatalf("rotation lost account id: %s", rotation.AccountID)
	}
	if rotation.AccessID == accessID || rotation.RefreshToken == token {
		t.Fatalf("rotation should issue fresh identifiers")
	}

	if ok, _ := manager.HasSession(ctx, accessID); ok {
		t.Fatalf("old session should be gone after rotation")
	}
	if _, err := manager.Rotate(ctx, accessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token on reuse, got %v", err)
	}
}

func TestManagerRotateRejectsWrongToken(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	accessID := NewAccessID()
	if _, err := manager.Generate(ctx, accessID, uuid.New()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Rotate(ctx, accessID, "forged"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestManagerRevokeAccountBlocksRotation(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	accountID := uuid.New()
	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID, accountID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := manager.RevokeAccount(ctx, accountID); err != nil {
		t.Fatalf("revoke account: %v", err)
	}
	revoked, err := manager.IsAccountRevoked(ctx, accountID.String())
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}
	if _, err := manager.Rotate(ctx, accessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("revoked account should not rotate, got %v", err)
	}

	if _, err := manager.Generate(ctx, NewAccessID(), accountID); err != nil {
		t.Fatalf("generate after revoke: %v", err)
	}
	revoked, _ = manager.IsAccountRevoked(ctx, accountID.String())
	if revoked {
		t.Fatalf("fresh login should lift revocation")
	}
}

func TestManagerRevoke(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	accessID := NewAccessID()
	if _, err := manager.Generate(ctx, accessID, uuid.New()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := manager.HasSession(ctx, accessID); ok {
		t.Fatalf("session should be revoked")
	}
	if err := manager.Revoke(ctx, " "); err == nil {
		t.Fatalf("expected error for blank access id")
	}
}

func TestManagerStoresOnlyTokenDigest(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()
	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID, uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stored := store.data[store.AccessSessionKey(accessID)]
	if stored == "" || strings.Contains(stored, token) {
		t.Fatalf("raw refresh token must not be stored, got %q", stored)
	}
}

func TestManagerRotateRejectsCorruptRecord(t *testing.T) {
	manager, store := newTestManager()
	accessID := NewAccessID()
	store.data[store.AccessSessionKey(accessID)] = "not-json"
	if _, err := manager.Rotate(context.Background(), accessID, "anything"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}
