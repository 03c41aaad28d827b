package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/armory/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window in-memory rate limiter keyed by client.
// Coarse protection for the checkout endpoint against cart-spam; the
// authoritative dedup for payment events lives in the database, not here.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*rateBucket
	done    chan struct{}
}

type rateBucket struct {
	count      int
	windowEnds time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*rateBucket),
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, bucket := range rl.buckets {
				if now.After(bucket.windowEnds) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow reports whether a request under the key may proceed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, ok := rl.buckets[key]
	if !ok || now.After(bucket.windowEnds) {
		rl.buckets[key] = &rateBucket{count: 1, windowEnds: now.Add(rl.window)}
		return true
	}
	if bucket.count >= rl.limit {
		return false
	}
	bucket.count++
	return true
}

// Remaining returns how many requests are left in the current window
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[key]
	if !ok || time.Now().After(bucket.windowEnds) {
		return rl.limit
	}
	remaining := rl.limit - bucket.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stop terminates the cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// RateLimit returns a rate limiting middleware keyed by client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with a custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
			c.Writer.Header().Set("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests"))
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
