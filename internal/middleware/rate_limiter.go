package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"brewpos/internal/apierror"
)

// slidingWindow is an in-memory per-IP rate limiter. Good enough for a
// single instance; swap for a Redis counter when running more than one.
type slidingWindow struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	window    time.Duration
	lastPurge time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		hits:      make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		lastPurge: time.Now(),
	}
}

func (s *slidingWindow) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-s.window)

	if now.Sub(s.lastPurge) > 5*time.Minute {
		for k, times := range s.hits {
			if len(times) == 0 || times[len(times)-1].Before(cutoff) {
				delete(s.hits, k)
			}
		}
		s.lastPurge = now
	}

	times := s.hits[key]
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= s.limit {
		s.hits[key] = kept
		return false
	}
	s.hits[key] = append(kept, now)
	return true
}

// RateLimiter caps general API traffic per client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	sw := newSlidingWindow(limit, window)
	return func(c *gin.Context) {
		if !sw.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter is a tighter limit for the credential endpoints.
func LoginRateLimiter() gin.HandlerFunc {
	return RateLimiter(10, time.Minute)
}
