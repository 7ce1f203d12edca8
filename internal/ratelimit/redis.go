package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter 使用有序集合实现滑动窗口，分数为请求时间（微秒）
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	window time.Duration
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisLimiter 创建限流器，键名为 prefix + IP
func NewRedisLimiter(rdb redis.Cmdable, prefix string, window time.Duration, log *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		prefix: prefix,
		window: window,
		// 比窗口稍长以作缓冲
		ttl: window + window/24,
		log: log,
	}
}

func (l *RedisLimiter) Hit(ctx context.Context, ip string, at time.Time) (int64, *Reservation, error) {
	if err := validateIP(ip); err != nil {
		return 0, nil, err
	}

	key := l.prefix + ip
	minTimestamp := float64(at.Add(-l.window).UnixMicro())
	memberID, err := generateUniqueID(at)
	if err != nil {
		return 0, nil, fmt.Errorf("生成 memberID 失败: %w", err)
	}

	// 清理旧记录、添加本次记录、刷新过期时间、读取总数在同一个事务中完成
	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%f", minTimestamp))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMicro()), Member: memberID})
	pipe.Expire(ctx, key, l.ttl)
	countCmd := pipe.ZCard(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, nil, fmt.Errorf("执行限流计数事务失败: %w", err)
	}
	count, err := countCmd.Result()
	if err != nil {
		l.remove(ctx, key, memberID)
		return 0, nil, fmt.Errorf("获取限流计数结果失败: %w", err)
	}

	return count, &Reservation{rollback: func() {
		// 请求上下文可能已经结束
		l.remove(context.Background(), key, memberID)
	}}, nil
}

// remove 撤销一次计数，失败时只能记录日志，此时主流程已经失败了
func (l *RedisLimiter) remove(ctx context.Context, key, member string) {
	if err := l.rdb.ZRem(ctx, key, member).Err(); err != nil {
		l.log.Error("严重警告: 提交频率计数补偿操作失败!",
			zap.String("key", key),
			zap.String("member", member),
			zap.Error(err))
	}
}
