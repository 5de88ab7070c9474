package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware implements a per-IP fixed-window limit backed by
// Redis. Redis errors fail open so a cache outage never blocks traffic.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limit <= 0 {
			return c.Next()
		}

		ctx := context.Background()
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("rl:ip:%s:%d", c.IP(), bucket)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next()
		}
		rdb.Expire(ctx, key, window+time.Second)

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			retryAfter := int64(window.Seconds()) - (time.Now().Unix() % int64(window.Seconds()))
			c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

			return c.Status(429).JSON(fiber.Map{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests",
				"limit":       limit,
				"retry_after": retryAfter,
			})
		}

		return c.Next()
	}
}
