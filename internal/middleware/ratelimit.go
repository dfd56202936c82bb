package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/rental-api/internal/config"
)

// Bucket classes. Writes and search requests draw from the write bucket,
// which holds fewer tokens than the read bucket.
const (
	classRead  = "read"
	classWrite = "write"
)

// apiPrefix is stripped before the route group is taken.
const apiPrefix = "/api/v1"

// bucketScript refills continuously at ARGV[3] tokens per millisecond and
// returns {allowed, tokens left, ms until the next token}.
var bucketScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local ttl_ms = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
if tokens == nil or stamp == nil then
	tokens = capacity
	stamp = now
end
tokens = math.min(capacity, tokens + math.max(0, now - stamp) * rate)

local allowed = 0
local wait = 0
if tokens >= 1 then
	allowed = 1
	tokens = tokens - 1
else
	wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'stamp', now)
redis.call('PEXPIRE', KEYS[1], ttl_ms)
return {allowed, math.floor(tokens), wait}
`)

// NewTokenBucket limits requests with token buckets kept in Redis, one per
// class and route group. Redis failures let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	rate := float64(cfg.RefillTokens) / float64(cfg.RefillInterval.Milliseconds())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, capacity := bucketFor(cfg, c)
			args := []any{time.Now().UnixMilli(), capacity, rate, cfg.TTL.Milliseconds()}

			res, err := bucketScript.Run(c.Request().Context(), rdb, []string{key}, args...).Int64Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					slog.Warn("ratelimit: script failed", "key", key, "err", err, "result", res)
				}
				return next(c)
			}
			allowed, remaining, waitMs := res[0] == 1, res[1], res[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if !allowed {
				h.Set("Retry-After", strconv.FormatInt((waitMs+999)/1000, 10))
				if cfg.Debug {
					slog.Info("ratelimit: blocked", "key", key, "retry_ms", waitMs)
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			}
			return next(c)
		}
	}
}

// classify puts safe methods in the read class, except places_search,
// which is a POST read that can touch every place.
func classify(r *http.Request) string {
	if strings.HasSuffix(r.URL.Path, "/places_search") {
		return classWrite
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return classRead
	}
	return classWrite
}

// routeGroup is the first path segment under the API prefix, so
// /api/v1/places/1/reviews and /api/v1/places share "places".
func routeGroup(path string) string {
	rest := strings.TrimPrefix(path, apiPrefix)
	rest = strings.TrimPrefix(rest, "/")
	group, _, _ := strings.Cut(rest, "/")
	if group == "" {
		return "root"
	}
	return group
}

// bucketFor derives the bucket key and its capacity. The "group" strategy
// shares a bucket between all clients; anything else keys on the client ip
// as well.
func bucketFor(cfg config.RateLimitConfig, c echo.Context) (string, int) {
	class := classify(c.Request())
	capacity := cfg.Capacity
	if class == classWrite {
		capacity = cfg.WriteCapacity
	}

	parts := []string{cfg.Prefix, class, routeGroup(c.Request().URL.Path)}
	if !strings.EqualFold(cfg.KeyStrategy, "group") {
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		parts = append(parts, ip)
	}
	return strings.Join(parts, ":"), capacity
}
