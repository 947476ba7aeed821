package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/allisson/warden/internal/httputil"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = time.Hour
)

// limiterStore holds one token bucket per key and forgets keys idle for more than an hour.
type limiterStore[K comparable] struct {
	limiters sync.Map // map[K]*limiterEntry
	rps      float64
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

func newLimiterStore[K comparable](ctx context.Context, rps float64, burst int) *limiterStore[K] {
	s := &limiterStore[K]{rps: rps, burst: burst}
	go s.cleanupStale(ctx, limiterCleanupInterval)
	return s
}

func (s *limiterStore[K]) get(key K) *rate.Limiter {
	now := time.Now()
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	}
	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

func (s *limiterStore[K]) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-limiterIdleTTL)
			s.limiters.Range(func(key, value any) bool {
				entry := value.(*limiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()
				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

// rejectTooManyRequests answers 429 with a Retry-After header computed from the bucket.
func rejectTooManyRequests(c *gin.Context, limiter *rate.Limiter, message string) {
	reservation := limiter.Reserve()
	retryAfter := int(math.Ceil(reservation.Delay().Seconds()))
	reservation.Cancel()

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.JSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: message,
		Code:    "RATE_LIMITED",
	})
	c.Abort()
}

// SubjectRateLimitMiddleware limits each authenticated subject to rps requests per second with
// the given burst. MUST run after AuthenticationMiddleware. The cleanup goroutine stops with ctx.
func SubjectRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[string](ctx, rps, burst)

	return func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		limiter := store.get(identity.SubjectID.String())
		if !limiter.Allow() {
			logger.Debug("rate limit exceeded", slog.String("subject_id", identity.SubjectID.String()))
			rejectTooManyRequests(c, limiter, "Too many requests. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}

// IPRateLimitMiddleware limits each client IP on unauthenticated endpoints such as login,
// registration and refresh. c.ClientIP honours X-Forwarded-For and X-Real-IP from trusted proxies.
func IPRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[string](ctx, rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.get(clientIP)
		if !limiter.Allow() {
			logger.Debug("ip rate limit exceeded", slog.String("client_ip", clientIP))
			rejectTooManyRequests(c, limiter, "Too many requests from this IP. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}
