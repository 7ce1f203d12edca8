package form

import (
	"context"
	"fmt"
)

// 表单生命周期事件
const (
	// EventBooted 在表单及其所有插件启动完成后触发
	EventBooted = "form.booted"
	// EventHandleValidated 在提交的数据全部通过校验后触发
	EventHandleValidated = "handle.validated"
)

// Listener 是事件监听函数，返回错误会中断后续监听器
type Listener func(ctx context.Context) error

// Dispatcher 按注册顺序同步调用监听器。
// 每个 Form 实例拥有自己的 Dispatcher，只在一个请求内使用，因此不加锁。
// 在监听器内部再次 Dispatch 的事件会在当前调用栈中立即执行完毕。
type Dispatcher struct {
	listeners map[string][]Listener
}

// NewDispatcher 创建一个空的事件分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[string][]Listener)}
}

// Listen 注册监听器，返回自身以便链式调用
func (d *Dispatcher) Listen(event string, fn Listener) *Dispatcher {
	d.listeners[event] = append(d.listeners[event], fn)
	return d
}

// HasListeners 报告事件是否有监听器
func (d *Dispatcher) HasListeners(event string) bool {
	return len(d.listeners[event]) > 0
}

// Dispatch 触发事件
func (d *Dispatcher) Dispatch(ctx context.Context, event string) error {
	for i, fn := range d.listeners[event] {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("事件 %s 的第 %d 个监听器失败: %w", event, i+1, err)
		}
	}
	return nil
}
