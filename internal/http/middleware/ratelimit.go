// Package middleware contains the Gin middleware shared by every route.
//
// This file implements a process-local token-bucket limiter with one bucket
// per caller identity (golang.org/x/time/rate). Idle buckets are evicted
// opportunistically so memory stays bounded. Limits are per instance; a
// horizontally scaled deployment multiplies the effective budget.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc maps a request to its bucket identity.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys authenticated requests by user id and the rest by client
// IP, with distinct prefixes.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

// KeyByIP keys every request by client IP.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out per-key token buckets. Safe for concurrent use.
type RateLimiter struct {
	limit rate.Limit
	burst int
	keyFn KeyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	idleTTL time.Duration
	sweepAt int
	lookups int

	now func() time.Time
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst. burst <= 0 is treated as 1.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByIP()
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		idleTTL: 10 * time.Minute,
		sweepAt: 4096,
		now:     time.Now,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Sweep before the lookup so a stale bucket for key is dropped too.
	if rl.lookups++; rl.lookups >= rl.sweepAt {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// Handler enforces the limit and answers 429 with a Retry-After hint when
// the caller's bucket is empty.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := rl.get(rl.keyFn(c))
		if lim.Allow() {
			c.Next()
			return
		}
		retry := 1
		if rl.limit > 0 {
			retry = int(math.Ceil(1 / float64(rl.limit)))
		}
		c.Header("Retry-After", strconv.Itoa(max(retry, 1)))
		abortJSON(c, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
	}
}
