package httpx

import (
	"context"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	signupRedisPrefix  = "signup:ratelimit:"
	redisLimiterBudget = 250 * time.Millisecond
)

// signupWindowScript bumps the client's counter, starts the window on the
// first hit and reports the count with the milliseconds left.
var signupWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// redisRateLimiter shares sign-up windows across API replicas. Keys look like
// signup:ratelimit:<client address>. Redis failures let the request through.
type redisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *slog.Logger
}

func newRedisRateLimiter(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *redisRateLimiter {
	return &redisRateLimiter{client: client, limit: limit, window: window, logger: logger}
}

func (rl *redisRateLimiter) Allow(ctx context.Context, client string) rateDecision {
	ctx, cancel := context.WithTimeout(ctx, redisLimiterBudget)
	defer cancel()

	res, err := signupWindowScript.Run(ctx, rl.client, []string{signupRedisPrefix + client}, rl.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		rl.logger.Error("signup rate limit check failed, allowing request", "client", client, "error", err)
		return rateDecision{allowed: true, limit: rl.limit}
	}
	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl <= 0 {
		ttl = rl.window
	}
	return rateDecision{
		allowed: count <= rl.limit,
		limit:   rl.limit,
		count:   count,
		resetAt: time.Now().Add(ttl),
	}
}

// Close is a no-op: the Redis client belongs to the caller.
func (rl *redisRateLimiter) Close() {}
