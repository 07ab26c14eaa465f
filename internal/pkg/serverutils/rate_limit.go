package serverutils

import (
	"context"
	"fmt"
	"time"

	"mindcare-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const MsgRateLimited = "Too many messages, please slow down"

// Decision is the outcome of one limiter check. Limit is 0 when no limit applied.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int64
}

type Limiter interface {
	Allow(ctx context.Context, subject string) Decision
}

// RateLimiter is a fixed-window per-subject limiter backed by Redis INCR.
// A nil client or a non-positive limit disables it. Redis errors let the
// request through.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	log    logger.ILogger
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration, log logger.ILogger) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window, log: log}
}

func (l *RateLimiter) Allow(ctx context.Context, subject string) Decision {
	if l == nil || l.client == nil || l.limit <= 0 {
		return Decision{Allowed: true}
	}

	bucket := time.Now().UnixNano() / int64(l.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", l.prefix, subject, bucket)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		if l.log != nil {
			l.log.Warn("RATE_LIMIT", "Redis unavailable, skipping limit", map[string]interface{}{"error": err.Error()})
		}
		return Decision{Allowed: true}
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}

	remaining := int64(l.limit) - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: count <= int64(l.limit), Limit: l.limit, Remaining: remaining}
}

// RateLimit checks the authenticated user, or the client IP, against limiter.
func RateLimit(limiter Limiter) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if limiter == nil {
			return ctx.Next()
		}

		subject, _ := ctx.Locals("user_id").(string)
		if subject == "" {
			subject = ctx.IP()
		}

		d := limiter.Allow(ctx.UserContext(), subject)
		if d.Limit > 0 {
			ctx.Set("X-RateLimit-Limit", fmt.Sprint(d.Limit))
			ctx.Set("X-RateLimit-Remaining", fmt.Sprint(d.Remaining))
		}
		if !d.Allowed {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, MsgRateLimited))
		}
		return ctx.Next()
	}
}
