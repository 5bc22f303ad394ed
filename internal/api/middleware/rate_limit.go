package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
)

// RateLimiter caps requests per client (IP + User-Agent) in a fixed window
// backed by the shared cache.
type RateLimiter struct {
	cache   providers.CacheProvider
	name    string
	limit   int
	window  time.Duration
	message string
	metrics *observability.Metrics
	now     func() time.Time
}

// NewRateLimiter creates a limiter. A nil cache disables limiting.
func NewRateLimiter(cache providers.CacheProvider, name string, limit int, window time.Duration, message string, metrics *observability.Metrics) *RateLimiter {
	return &RateLimiter{
		cache:   cache,
		name:    name,
		limit:   limit,
		window:  window,
		message: message,
		metrics: metrics,
		now:     time.Now,
	}
}

type rateLimitResponse struct {
	Error      string    `json:"error"`
	RetryAfter int       `json:"retryAfter"`
	Timestamp  time.Time `json:"timestamp"`
}

// Middleware enforces the limit. When the cache is unreachable requests pass through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl == nil || rl.cache == nil || rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := rl.key(r)
		count, err := rl.cache.Increment(ctx, key, rl.window)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("limiter", rl.name).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		ttl, err := rl.cache.TTL(ctx, key)
		if err != nil || ttl <= 0 {
			ttl = rl.window
		}
		retryAfter := int(math.Ceil(ttl.Seconds()))

		remaining := rl.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(retryAfter))

		if count > int64(rl.limit) {
			observability.RecordRateLimited(ctx, rl.metrics, rl.name)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(rateLimitResponse{
				Error:      rl.message,
				RetryAfter: retryAfter,
				Timestamp:  rl.now().UTC(),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) key(r *http.Request) string {
	ua := r.UserAgent()
	if ua == "" {
		ua = "unknown"
	}
	sum := sha256.Sum256([]byte(clientIP(r) + "-" + ua))
	return "ratelimit:" + rl.name + ":" + hex.EncodeToString(sum[:16])
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
