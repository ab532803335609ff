package redis

import "strings"

const keyNamespace = "cc"

// key joins the non-empty parts under the namespace: key("lock", "x") is
// "cc:lock:x".
func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// IdempotencyKey namespaces a client-supplied Idempotency-Key within scope.
func (*Client) IdempotencyKey(scope, id string) string { return key("idempotency", scope, id) }

func (*Client) RateLimitKey(scope string) string { return key("rate_limit", scope) }

// AccessSessionKey holds the refresh token bound to one access token id.
func (*Client) AccessSessionKey(accessID string) string { return key("session", "access", accessID) }

// AccountRevocationKey marks every session of a deactivated account as dead.
func (*Client) AccountRevocationKey(accountID string) string {
	return key("session", "revoked", accountID)
}

func (*Client) LockKey(name string) string { return key("lock", name) }
