package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/form-record-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 3 * time.Second

// InitRedis 初始化与Redis数据库的连接
// 启动时Redis不可达视为错误，由调用方决定是否终止启动
func InitRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到Redis: %w", err)
	}

	log.Info("Redis 连接成功！", zap.String("address", cfg.Address))
	return rdb, nil
}
