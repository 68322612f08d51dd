package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines per-endpoint rate limit settings.
type RateLimitConfig struct {
	// Rate is the number of requests allowed per second.
	Rate rate.Limit
	// Burst is the maximum burst size.
	Burst int
}

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c echo.Context) string

// ByIP buckets requests by client address.
func ByIP(c echo.Context) string {
	return c.RealIP()
}

// ByMailbox buckets requests by the authenticated mailbox and falls back to
// the client address. It must run after RequireSession.
func ByMailbox(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		if mailbox := id.Mailbox(); mailbox != "" {
			return "mailbox:" + mailbox
		}
	}
	return c.RealIP()
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	rate     rate.Limit
	burst    int
	key      KeyFunc
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a per-IP rate limiter.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return NewKeyedRateLimiter(RateLimitConfig{Rate: r, Burst: burst}, ByIP)
}

// NewKeyedRateLimiter creates a rate limiter that buckets requests with key.
func NewKeyedRateLimiter(cfg RateLimitConfig, key KeyFunc) *RateLimiter {
	if key == nil {
		key = ByIP
	}
	rl := &RateLimiter{
		limiters: make(map[string]*keyLimiter),
		rate:     cfg.Rate,
		burst:    cfg.Burst,
		key:      key,
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, exists := rl.limiters[key]; exists {
		l.lastSeen = time.Now()
		return l.limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[key] = &keyLimiter{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// cleanupLoop removes stale entries every 3 minutes.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune(time.Now().Add(-5 * time.Minute))
		}
	}
}

func (rl *RateLimiter) prune(before time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, l := range rl.limiters {
		if l.lastSeen.Before(before) {
			delete(rl.limiters, key)
		}
	}
}

// Middleware returns an Echo middleware that enforces the rate limit.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(rl.key(c))

			if !limiter.Allow() {
				retryAfter := max(int(1.0/float64(rl.rate)), 1)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
