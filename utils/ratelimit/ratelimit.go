package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter 按 key 计数的限流器
type Limiter interface {
	// Allow 在当前窗口内计数一次，超过 limit 返回 false
	Allow(ctx context.Context, key string, rule Rule) (bool, error)

	// Remaining 当前窗口内剩余的次数
	Remaining(ctx context.Context, key string, rule Rule) (int, error)

	// Reset 清除当前窗口的计数
	Reset(ctx context.Context, key string, rule Rule) error
}

// Rule 一条限流规则：每个 Window 最多 Limit 次
type Rule struct {
	Limit  int
	Window time.Duration
}

// CreateServerRule 创建服务器接口的限流规则，perMinute <= 0 表示不限流
func CreateServerRule(perMinute int) Rule {
	return Rule{Limit: perMinute, Window: time.Minute}
}

func (r Rule) Disabled() bool {
	return r.Limit <= 0 || r.Window <= 0
}

// FixedWindowLimiter 基于 Redis INCR + EXPIRE 的固定窗口计数
type FixedWindowLimiter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	failOpen    bool // Redis 不可用时放行
	now         func() time.Time
}

func NewFixedWindowLimiter(redisClient *redis.Client, logger *zap.Logger, failOpen bool) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		redisClient: redisClient,
		logger:      logger,
		failOpen:    failOpen,
		now:         time.Now,
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, rule Rule) (bool, error) {
	if rule.Disabled() {
		return true, nil
	}

	bucketKey := l.bucketKey(key, rule.Window)

	pipe := l.redisClient.Pipeline()
	incr := pipe.Incr(ctx, bucketKey)
	// 多留一秒，避免窗口边界上 key 提前过期
	pipe.Expire(ctx, bucketKey, rule.Window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limit check failed", zap.String("key", bucketKey), zap.Error(err))
		if l.failOpen {
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incr.Val()
	if count > int64(rule.Limit) {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", rule.Limit),
			zap.Duration("window", rule.Window))
		return false, nil
	}
	return true, nil
}

func (l *FixedWindowLimiter) Remaining(ctx context.Context, key string, rule Rule) (int, error) {
	if rule.Disabled() {
		return 0, nil
	}

	count, err := l.redisClient.Get(ctx, l.bucketKey(key, rule.Window)).Int()
	if errors.Is(err, redis.Nil) {
		return rule.Limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return max(rule.Limit-count, 0), nil
}

func (l *FixedWindowLimiter) Reset(ctx context.Context, key string, rule Rule) error {
	if err := l.redisClient.Del(ctx, l.bucketKey(key, rule.Window)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for key %s: %w", key, err)
	}
	return nil
}

// bucketKey 同一窗口内的请求落在同一个 key 上
func (l *FixedWindowLimiter) bucketKey(key string, window time.Duration) string {
	bucket := l.now().UnixNano() / int64(window)
	return fmt.Sprintf("ratelimit:%s:%d", key, bucket)
}
