package session

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// record is what Redis holds per access id. Only a digest of the refresh
// token is stored, so a dump of Redis cannot be replayed against /refresh.
type record struct {
	AccountID uuid.UUID `json:"account_id"`
	Digest    string    `json:"digest"`
	IssuedAt  time.Time `json:"issued_at"`
}

func newRecord(accountID uuid.UUID, now time.Time) (record, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return record{}, "", fmt.Errorf("generate refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	return record{AccountID: accountID, Digest: digest(token), IssuedAt: now.UTC()}, token, nil
}

func (r record) matches(token string) bool {
	return subtle.ConstantTimeCompare([]byte(r.Digest), []byte(digest(token))) == 1
}

func (r record) encode() (string, error) {
	b, err := json.Marshal(r)
	return string(b), err
}

func decodeRecord(raw string) (record, error) {
	var r record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return record{}, err
	}
	if r.AccountID == uuid.Nil || r.Digest == "" {
		return record{}, ErrInvalidRefreshToken
	}
	return r, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawStdEncoding.EncodeToString(sum[:])
}
