package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AttemptLimiter throttles repeated credential failures per account so the
// verify endpoints cannot be brute-forced. Implementations must be safe for
// concurrent use.
type AttemptLimiter interface {
	// Blocked reports whether further attempts for the email should be
	// refused right now.
	Blocked(ctx context.Context, email string) bool
	// RecordFailure notes one failed verification.
	RecordFailure(ctx context.Context, email string)
	// Reset clears the failure count after a successful verification.
	Reset(ctx context.Context, email string)
}

// RedisLimiter counts failures in Redis with a sliding expiry window.
type RedisLimiter struct {
	client      *redis.Client
	logger      *zap.Logger
	maxFailures int64
	window      time.Duration
}

// NewRedisLimiter constructs a limiter; maxFailures attempts within window
// block the account until the window lapses.
func NewRedisLimiter(client *redis.Client, logger *zap.Logger, maxFailures int, windowSeconds int) *RedisLimiter {
	if maxFailures <= 0 {
		maxFailures = 10
	}
	if windowSeconds <= 0 {
		windowSeconds = 300
	}
	return &RedisLimiter{
		client:      client,
		logger:      logger,
		maxFailures: int64(maxFailures),
		window:      time.Duration(windowSeconds) * time.Second,
	}
}

func (l *RedisLimiter) key(email string) string {
	return fmt.Sprintf("authfail:%s", email)
}

// Blocked checks the current failure count. Redis outages fail open: the
// limiter is protection, not a dependency.
func (l *RedisLimiter) Blocked(ctx context.Context, email string) bool {
	count, err := l.client.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if err != redis.Nil {
			l.logger.Warn("limiter lookup failed", zap.Error(err))
		}
		return false
	}
	return count >= l.maxFailures
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, email string) {
	key := l.key(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("limiter increment failed", zap.Error(err))
		return
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("limiter expire failed", zap.Error(err))
		}
	}
}

func (l *RedisLimiter) Reset(ctx context.Context, email string) {
	if err := l.client.Del(ctx, l.key(email)).Err(); err != nil {
		l.logger.Warn("limiter reset failed", zap.Error(err))
	}
}

// NoopLimiter is used when Redis is not configured.
type NoopLimiter struct{}

func (NoopLimiter) Blocked(context.Context, string) bool  { return false }
func (NoopLimiter) RecordFailure(context.Context, string) {}
func (NoopLimiter) Reset(context.Context, string)         {}
