package health

import (
	"context"
	"time"

	"github.com/SlpAus/form-record-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// Pinger 是检查器需要的Redis能力，*redis.Client 满足该接口
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Checker 定期Ping Redis并更新 Status
type Checker struct {
	rdb      Pinger
	status   *Status
	interval time.Duration
	log      *zap.Logger
}

// NewChecker 创建一个健康检查器
func NewChecker(rdb Pinger, status *Status, log *zap.Logger) *Checker {
	return &Checker{rdb: rdb, status: status, interval: checkInterval, log: log}
}

// PerformCheck 执行一次检查
func (c *Checker) PerformCheck(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := c.rdb.Ping(pingCtx).Err()
	if err != nil {
		c.log.Debug("健康检查: Ping失败", zap.Error(err))
	}
	c.status.Assess(err == nil)
}

// Run 阻塞式地循环执行检查，直到收到停机信号
func (c *Checker) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	c.log.Info("Redis健康检查器已启动。")

	for {
		if err := handle.Sleep(c.interval); err != nil {
			c.log.Info("Redis健康检查器已停止。")
			return
		}
		c.PerformCheck(handle.Ctx())
	}
}
