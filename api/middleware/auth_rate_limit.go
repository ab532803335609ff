package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/callcenter-backend/api/responses"
	"github.com/angelmondragon/callcenter-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/callcenter-backend/pkg/errors"
	"github.com/angelmondragon/callcenter-backend/pkg/logger"
)

const maxLoginBody = 64 << 10

type windowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// loginCounter is one fixed-window budget, keyed by client IP or by the
// hashed email in the login body.
type loginCounter struct {
	name  string
	limit int
	key   func(r *http.Request, body []byte) string
}

// LoginRateLimit throttles credential guessing on the login route. Each
// attempt spends from a per-IP and a per-email budget; either one running
// out answers 429 with Retry-After.
func LoginRateLimit(cfg config.AuthRateLimitConfig, store windowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	counters := make([]loginCounter, 0, 2)
	if cfg.LoginIPLimit > 0 {
		counters = append(counters, loginCounter{name: "ip", limit: cfg.LoginIPLimit, key: func(r *http.Request, _ []byte) string {
			return clientIP(r)
		}})
	}
	if cfg.LoginEmailLimit > 0 {
		counters = append(counters, loginCounter{name: "email", limit: cfg.LoginEmailLimit, key: func(_ *http.Request, body []byte) string {
			return emailDigest(body)
		}})
	}

	return func(next http.Handler) http.Handler {
		if store == nil || cfg.LoginWindow <= 0 || len(counters) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			for _, c := range counters {
				key := c.key(r, body)
				if key == "" {
					continue
				}
				allowed, count, err := store.FixedWindowAllow(ctx, "login:"+c.name+":"+key, int64(c.limit), cfg.LoginWindow)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"limit_scope": c.name,
						"attempts":    count,
						"limit":       c.limit,
					}), "auth.login.throttled")
					w.Header().Set("Retry-After", strconv.Itoa(int(cfg.LoginWindow.Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop set by the platform router.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func emailDigest(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
