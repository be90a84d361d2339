package middlewares

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"

	"github.com/huyphamdev/laundry-pos/utils"
)

// AttemptStore counts login attempts per key within a rolling window.
// It is injected so a single-node deployment can use the in-memory map
// and a multi-node one can point at Redis.
type AttemptStore interface {
	Incr(key string, window time.Duration) (int64, error)
	Reset(key string) error
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

type MemoryAttemptStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryAttemptStore) Incr(key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.entries[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &memoryEntry{expiresAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (s *MemoryAttemptStore) Reset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// StartCleanup drops expired entries periodically so the map does not
// grow without bound.
func (s *MemoryAttemptStore) StartCleanup(interval time.Duration) {
	go func() {
		for range time.Tick(interval) {
			s.mu.Lock()
			now := time.Now()
			for key, entry := range s.entries {
				if now.After(entry.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}()
}

type RedisAttemptStore struct {
	Client *redis.Client
}

func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{Client: client}
}

func (s *RedisAttemptStore) Incr(key string, window time.Duration) (int64, error) {
	ctx := context.Background()
	count, err := s.Client.Incr(ctx, "login_attempts:"+key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		s.Client.Expire(ctx, "login_attempts:"+key, window)
	}
	return count, nil
}

func (s *RedisAttemptStore) Reset(key string) error {
	return s.Client.Del(context.Background(), "login_attempts:"+key).Err()
}

// LoginLimiter throttles the login endpoint per client IP.
func LoginLimiter(store AttemptStore, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.Incr(c.ClientIP(), window)
		if err != nil {
			// Counting must never take the login path down.
			utils.ErrorLogger.Printf("attempt store: %v", err)
			c.Next()
			return
		}
		if count > max {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "too many login attempts, please wait",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiter is the coarse per-IP limiter for the whole API.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.r, rl.burst)
		rl.limiters[ip] = limiter
	}
	return limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
