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
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/moments-backend/api/responses"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
)

// maxLoginBody bounds how much of a login body is buffered to read the username.
const maxLoginBody = 16 << 10

type windowCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginLimits caps admin login attempts per client address and per username
// inside one fixed window. A zero limit disables that counter.
type LoginLimits struct {
	Window      time.Duration
	PerIP       int
	PerUsername int
}

type throttleCheck struct {
	kind  string
	scope string
	limit int
}

// LoginThrottle counts attempts in the shared store so every API replica
// sees the same totals. Usernames are hashed before they reach the store or
// the logs.
func LoginThrottle(limits LoginLimits, store windowCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || limits.Window <= 0 || (limits.PerIP <= 0 && limits.PerUsername <= 0) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var checks []throttleCheck
			if limits.PerIP > 0 {
				checks = append(checks, throttleCheck{kind: "ip", scope: "login:ip:" + ipBucket(clientIP(r)), limit: limits.PerIP})
			}
			if limits.PerUsername > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if name := loginUsername(body); name != "" {
					checks = append(checks, throttleCheck{kind: "username", scope: "login:user:" + hashValue(name), limit: limits.PerUsername})
				}
			}

			for _, c := range checks {
				allowed, count, err := store.FixedWindowAllow(ctx, c.scope, int64(c.limit), limits.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "login throttle"))
					return
				}
				if allowed {
					continue
				}
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"throttle": c.kind,
						"scope":    c.scope,
						"attempts": count,
						"limit":    c.limit,
					}), "auth.rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(limits.Window.Round(time.Second).Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP takes the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
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

// ipBucket groups IPv6 clients by /64, the smallest block a single host
// usually controls. IPv4 and unparsable values pass through.
func ipBucket(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	addr = addr.Unmap()
	if addr.Is4() {
		return addr.String()
	}
	prefix, err := addr.Prefix(64)
	if err != nil {
		return addr.String()
	}
	return prefix.String()
}

func loginUsername(body []byte) string {
	var payload struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Username))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
