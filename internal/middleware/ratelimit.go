package middleware

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"proshop/internal/errs"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// IPRateLimiter throttles requests per client IP with a token bucket.
type IPRateLimiter struct {
	visitors sync.Map
	rps      rate.Limit
	burst    int
	log      *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewIPRateLimiter allows perMinute requests per IP with a burst of 5. Idle visitors are
// forgotten until ctx is cancelled.
func NewIPRateLimiter(ctx context.Context, perMinute int, logger *zap.Logger) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 20
	}
	l := &IPRateLimiter{
		rps:   rate.Limit(float64(perMinute) / 60.0),
		burst: 5,
		log:   logger,
	}
	go l.cleanupVisitors(ctx)
	return l
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := l.visitors.Load(ip); ok {
		vi := v.(*visitor)
		vi.lastSeen.Store(now)
		return vi.limiter
	}
	vi := &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
	vi.lastSeen.Store(now)
	actual, _ := l.visitors.LoadOrStore(ip, vi)
	return actual.(*visitor).limiter
}

func (l *IPRateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-5 * time.Minute).UnixNano()
			l.visitors.Range(func(k, v interface{}) bool {
				if v.(*visitor).lastSeen.Load() < cutoff {
					l.visitors.Delete(k)
				}
				return true
			})
		}
	}
}

// Guard rejects the request with 429 once its IP ran out of tokens.
func (l *IPRateLimiter) Guard() Guard {
	return func(c *fiber.Ctx) error {
		ip := getIP(c)
		if !l.getLimiter(ip).Allow() {
			l.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Path()))
			return errs.New(fiber.StatusTooManyRequests, "Too many requests, please try again later")
		}
		return nil
	}
}

func getIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil {
		return host
	}
	return ip
}
