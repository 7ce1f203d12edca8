package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/form-record-backend/pkg/lifecycle"
	"go.uber.org/zap"
)

const (
	httpTimeout     = 15 * time.Second
	gracefulTimeout = 30 * time.Second
)

// Closer 是停机最后阶段需要释放的资源，例如Redis客户端和数据库连接池
type Closer struct {
	Name  string
	Close func() error
}

// Coordinator 负责编排应用程序的优雅停机流程。
// 它接收外部创建的生命周期管理器，并使用它来协调后台服务的停止。
type Coordinator struct {
	Manager *lifecycle.Manager
	closers []Closer
	log     *zap.Logger
}

// NewCoordinator 创建一个新的停机协调器，closers 按给定顺序关闭
func NewCoordinator(mgr *lifecycle.Manager, log *zap.Logger, closers ...Closer) *Coordinator {
	return &Coordinator{Manager: mgr, closers: closers, log: log}
}

// ListenForSignalsAndShutdown 启动信号监听并阻塞，直到停机流程完成。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 阻塞直到接收到停机信号
	sig := <-sigChan
	c.log.Info("收到关闭信号，开始优雅停机...", zap.String("signal", sig.String()))
	c.Shutdown(server)
}

// Shutdown 依次关闭HTTP服务器、后台服务和底层连接
func (c *Coordinator) Shutdown(server *http.Server) {
	// 关闭HTTP服务器，允许正在进行的请求完成
	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		c.log.Error("Gin服务器关闭错误", zap.Error(err))
	} else {
		c.log.Info("Gin服务器已关闭。")
	}

	c.log.Info("等待后台服务停止...", zap.Duration("timeout", gracefulTimeout))
	c.Manager.Shutdown()
	if remaining := c.Manager.WaitWithTimeout(gracefulTimeout); len(remaining) > 0 {
		c.log.Warn("部分后台服务未能在超时前停止", zap.Strings("services", remaining))
	} else {
		c.log.Info("所有后台服务已停止。")
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.log.Error("关闭资源失败", zap.String("resource", closer.Name), zap.Error(err))
			continue
		}
		c.log.Info("资源已关闭", zap.String("resource", closer.Name))
	}

	c.log.Info("优雅停机完成。")
}
