package middleware

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"reelgram/internal/httputil"
)

// checkRateLimit applies a fixed-window counter in Redis. The first hit in
// a window creates the key with an expiry; once the count exceeds the limit
// the caller is rejected until the window rolls over. A nil client or a
// Redis failure lets the request through rather than taking the API down
// with it.
func checkRateLimit(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) bool {
	if rdb == nil {
		return true
	}

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[RateLimit] Redis error, allowing request: %v", err)
		return true
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("[RateLimit] Failed to set expiry on %s: %v", key, err)
		}
	}
	return count <= int64(limit)
}

// RateLimit throttles a route group per client IP.
func RateLimit(rdb *redis.Client, name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + name + ":" + clientIP(r)
			if !checkRateLimit(r.Context(), rdb, key, limit, window) {
				httputil.WriteRateLimited(w, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
