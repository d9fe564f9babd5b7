package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"jetsuite-backend/internal/delivery/http/response"
	"jetsuite-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis
	KeyPrefix string
	// Redis client; nil means in-memory counting only
	Redis *goredis.Client
	// Where rate limit hits are reported
	Audit security.Recorder
	// In-memory fallback store (default: a fresh store per middleware)
	Store *MemoryStore
}

// memorySweepInterval is how often the fallback store drops expired keys
const memorySweepInterval = 5 * time.Minute

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

// MemoryStore counts requests in process when Redis is unavailable.
// Expired keys are swept from Hit at most once per sweep interval.
type MemoryStore struct {
	entries       sync.Map
	sweepInterval time.Duration

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = memorySweepInterval
	}
	return &MemoryStore{sweepInterval: sweepInterval}
}

// Hit counts one request for key and returns the count and window end.
func (s *MemoryStore) Hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	s.maybeSweep(now)

	entryI, _ := s.entries.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

// Sweep removes every key whose window ended before now and reports how many went.
func (s *MemoryStore) Sweep(now time.Time) int {
	removed := 0
	s.entries.Range(func(key, value interface{}) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.resetAt) {
			s.entries.Delete(key)
			removed++
		}
		entry.mu.Unlock()
		return true
	})
	return removed
}

// Len reports how many keys are tracked.
func (s *MemoryStore) Len() int {
	n := 0
	s.entries.Range(func(interface{}, interface{}) bool {
		n++
		return true
	})
	return n
}

func (s *MemoryStore) maybeSweep(now time.Time) {
	s.sweepMu.Lock()
	if now.Sub(s.lastSweep) < s.sweepInterval {
		s.sweepMu.Unlock()
		return
	}
	s.lastSweep = now
	s.sweepMu.Unlock()

	s.Sweep(now)
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// ResolveRateLimitConfig limits how often one client may ask for access resolutions
func ResolveRateLimitConfig(limit int, window time.Duration, client *goredis.Client, audit security.Recorder) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:resolve:",
		Redis:     client,
		Audit:     audit,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware counts in Redis when available and falls back to memory
// on any Redis error (fail open: the guard endpoints are read-only).
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	store := config.Store
	if store == nil {
		store = NewMemoryStore(memorySweepInterval)
	}
	if config.Audit == nil {
		config.Audit = security.NopRecorder{}
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time
		var err error
		if config.Redis != nil {
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), config.Redis, fullKey, config)
		}
		if config.Redis == nil || err != nil {
			count, resetAt = store.Hit(fullKey, config.Window, now)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			config.Audit.Log(c.Request.Context(), security.SecurityEvent{
				Event:     security.EventRateLimitTriggered,
				Path:      c.FullPath(),
				RequestID: c.GetString("RequestID"),
				Details:   map[string]interface{}{"ip": c.ClientIP()},
			})
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRateLimitRedis checks rate limit using Redis with atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}
