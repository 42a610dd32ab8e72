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

	"github.com/angelmondragon/mealprep-backend/api/responses"
	"github.com/angelmondragon/mealprep-backend/api/validators"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/mealprep-backend/pkg/redis"
)

// CounterStore increments a fixed-window counter, starting the window on the
// first hit.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitPolicy throttles one public write surface by client IP and by the
// phone number in the body. A zero limit disables that counter.
type RateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int64
	phoneLimit int64
}

func NewRateLimitPolicy(name string, window time.Duration, ipLimit, phoneLimit int) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "signup"
	}
	return RateLimitPolicy{name: name, window: window, ipLimit: int64(ipLimit), phoneLimit: int64(phoneLimit)}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.phoneLimit > 0)
}

func (p RateLimitPolicy) key(dimension, value string) string {
	return pkgredis.Key("rate_limit", p.name, dimension, value)
}

// counter is one throttled dimension of a request.
type counter struct {
	dimension string
	value     string
	limit     int64
}

// RateLimit rejects with 429 once any counter for the request passes its
// limit inside the policy window.
func RateLimit(policy RateLimitPolicy, store CounterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			counters, err := policy.counters(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			for _, c := range counters {
				n, err := store.IncrWithTTL(ctx, policy.key(c.dimension, c.value), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if n > c.limit {
					policy.reject(ctx, logg, w, c, n)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// counters reads the body when the phone dimension is on and puts it back
// for the handler.
func (p RateLimitPolicy) counters(r *http.Request) ([]counter, error) {
	var out []counter
	if ip := clientIP(r); p.ipLimit > 0 && ip != "" {
		out = append(out, counter{dimension: "ip", value: ip, limit: p.ipLimit})
	}
	if p.phoneLimit <= 0 || r.Body == nil {
		return out, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, validators.MaxBodyBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Phone string `json:"phone"`
	}
	// malformed bodies fall through to the handler's own validation
	if json.Unmarshal(body, &payload) == nil {
		// "+965 5000-1234" and "96550001234" share a counter
		if phone := strings.TrimPrefix(validators.SanitizePhone(payload.Phone, 0), "+"); phone != "" {
			out = append(out, counter{dimension: "phone", value: digest(phone), limit: p.phoneLimit})
		}
	}
	return out, nil
}

func (p RateLimitPolicy) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, c counter, attempts int64) {
	w.Header().Set("Retry-After", strconv.Itoa(int(p.window.Round(time.Second).Seconds())))
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         p.name,
			"dimension":      c.dimension,
			"value":          c.value,
			"attempts":       attempts,
			"limit":          c.limit,
			"window_seconds": int(p.window.Seconds()),
		}), "rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

// clientIP trusts the first X-Forwarded-For hop, as set by the platform
// router, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// digest keeps raw phone numbers out of redis keys and logs.
func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:12])
}
