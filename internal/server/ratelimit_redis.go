package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"wazivo/internal/config"
	"wazivo/internal/errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "wazivo:ratelimit:"

// RedisLimiter is a fixed window counter shared by every replica through
// Redis. Each key gets RequestsPerMin requests per Window.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	logger *errors.Logger
	now    func() time.Time
}

// NewRedisLimiter connects to the configured Redis URL. An unreachable Redis
// is logged, not fatal: checks fail open until it comes back.
func NewRedisLimiter(cfg config.RateLimitConfig, logger *errors.Logger) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid rate limit redis URL", err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second

	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	limiter := &RedisLimiter{
		client: redis.NewClient(opts),
		limit:  int64(max(cfg.RequestsPerMin, 1)),
		window: window,
		logger: logger,
		now:    time.Now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := limiter.client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis rate limiter is not reachable yet", "addr", opts.Addr, "error", err.Error())
	}

	return limiter, nil
}

// Allow increments the counter of the current window for key
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowStart := now.Truncate(l.window)
	redisKey := redisKeyPrefix + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	if count.Val() > l.limit {
		return Decision{Allowed: false, RetryAfter: windowStart.Add(l.window).Sub(now)}, nil
	}
	return Decision{Allowed: true}, nil
}

// Backend names the limiter implementation
func (l *RedisLimiter) Backend() string { return "redis" }

// GetStats returns the limiter settings and connection pool counters
func (l *RedisLimiter) GetStats() map[string]any {
	pool := l.client.PoolStats()
	return map[string]any{
		"backend":          l.Backend(),
		"limit_per_window": l.limit,
		"window":           l.window.String(),
		"pool_total_conns": pool.TotalConns,
		"pool_idle_conns":  pool.IdleConns,
		"pool_timeouts":    pool.Timeouts,
	}
}

// Close closes the Redis client
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
