package lifecycle

import (
	"context"
	"sync"
	"time"
)

// Handle 是分发给每个后台服务的生命周期句柄。
// 服务退出前必须调用 Close（通常通过 defer），否则 Manager 会一直等待它。
type Handle struct {
	name      string
	ctx       context.Context
	closeOnce sync.Once
	release   func()
}

// Name 返回注册时使用的服务名
func (h *Handle) Name() string {
	return h.name
}

// Ctx 返回与停机信号绑定的上下文
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在 Manager 广播停机信号时关闭
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Close 通知 Manager 该服务已经退出，重复调用是安全的
func (h *Handle) Close() {
	h.closeOnce.Do(h.release)
}

// Sleep 暂停指定的时长，如果期间收到停机信号则提前返回上下文的错误。
// 后台循环应使用它代替 time.Sleep。
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.ctx.Err()
	case <-timer.C:
		return nil
	}
}
