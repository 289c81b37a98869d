package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/response"
)

// RateLimiter controls how frequently a caller may perform an action.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryRateLimiter tracks token buckets per key inside the process.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryRateLimiter allows up to requests events per window plus burst.
// Idle entries expire after ttl.
func NewMemoryRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) *MemoryRateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &MemoryRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	for k, other := range l.visitors {
		if now.Sub(other.lastSeen) > l.ttl {
			delete(l.visitors, k)
		}
	}

	return v.limiter.AllowN(now, 1), nil
}

// RateLimit rejects callers that exceed limiter with 429. scope separates the
// buckets of different endpoints. Limiter failures let the request through.
func RateLimit(limiter RateLimiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := fmt.Sprintf("%s:%s", scope, ClientIP(r))

			allowed, err := limiter.Allow(ctx, key)
			if err != nil {
				logging.FromContext(ctx).Warn("rate limiter unavailable", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(60))
				response.Error(ctx, w, apierrors.TooManyRequests("too many requests, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first forwarded address or the remote host.
func ClientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
