package middleware

import (
	"sync"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/shiftwise/shiftbot/backend/utils"
)

// RateLimiter implements a simple in-memory sliding-window rate limiter,
// keyed by client IP. It exists to slow password guessing on the login
// endpoint, not to be a general traffic shaper.
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	window   time.Duration
	limit    int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
	}

	// Cleanup old entries every minute
	go rl.cleanup()

	return rl
}

// Allow checks if a request should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	var valid []time.Time
	for _, req := range rl.requests[key] {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		cutoff := time.Now().Add(-rl.window)
		for key, reqs := range rl.requests {
			var valid []time.Time
			for _, req := range reqs {
				if req.After(cutoff) {
					valid = append(valid, req)
				}
			}
			if len(valid) == 0 {
				delete(rl.requests, key)
			} else {
				rl.requests[key] = valid
			}
		}
		rl.mutex.Unlock()
	}
}

// RateLimit returns a middleware enforcing the limiter per client IP
func RateLimit(rl *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := utils.GetIPAddress(c)
		if !rl.Allow(ip) {
			slog.Warn("Rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", c.Path()))
			return utils.SendError(c, fiber.StatusTooManyRequests,
				"RATE_LIMITED", "Too many requests, slow down", nil)
		}
		return c.Next()
	}
}
