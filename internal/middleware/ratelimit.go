package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/colmward/hamper/internal/logging"
)

// RateLimiter enforces a fixed-window request cap per client IP, counted in
// Redis so every server instance shares the same view.
type RateLimiter struct {
	client *redis.Client
	name   string
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, name: name, limit: limit, window: window}
}

// NewAuthRateLimiter caps the credential endpoints tightly to slow down
// password guessing.
func NewAuthRateLimiter(client *redis.Client) *RateLimiter {
	return NewRateLimiter(client, "auth", 5, time.Minute)
}

// NewAPIRateLimiter is the general per-IP cap for the JSON API.
func NewAPIRateLimiter(client *redis.Client) *RateLimiter {
	return NewRateLimiter(client, "api", 100, time.Minute)
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, reset, err := rl.count(r.Context(), clientIP(r))
		if err != nil {
			// A broken limiter store must not take the API down with it.
			logging.Warn("Rate limiter unavailable", logging.Fields{"error": err.Error()})
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > rl.limit {
			w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(reset).Seconds())+1, 10))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Rate limit exceeded. Please try again later."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// count bumps the caller's counter for the current window. Keys carry the
// window start, so a new window means a new key and stale keys expire on
// their own.
func (rl *RateLimiter) count(ctx context.Context, ip string) (int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.window)
	reset := windowStart.Add(rl.window)
	key := "rl:" + rl.name + ":" + ip + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	n, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, reset, err
	}
	if n == 1 {
		rl.client.Expire(ctx, key, rl.window+time.Second)
	}
	return int(n), reset, nil
}

// clientIP prefers proxy headers so limits land on the real caller rather
// than the load balancer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
