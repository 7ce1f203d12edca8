package health

import (
	"sync"

	"go.uber.org/zap"
)

// State 定义了Redis依赖的健康状态
type State int

const (
	StateHealthy State = iota
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Status 线程安全地保存最近一次检查的结果
type Status struct {
	mu    sync.RWMutex
	state State
	log   *zap.Logger
}

// NewStatus 创建一个默认健康的状态
func NewStatus(log *zap.Logger) *Status {
	return &Status{state: StateHealthy, log: log}
}

// State 返回当前状态
func (s *Status) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsHealthy 供HTTP处理器判断是否可以使用Redis
func (s *Status) IsHealthy() bool {
	return s.State() == StateHealthy
}

// Assess 根据一次检查结果更新状态，只在状态变化时记录日志
func (s *Status) Assess(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := StateDegraded
	if connected {
		next = StateHealthy
	}
	if next == s.state {
		return
	}
	s.state = next
	if connected {
		s.log.Info("健康检查: Redis连接已恢复，系统状态 -> [健康]")
	} else {
		s.log.Warn("健康检查: Redis连接丢失，系统状态 -> [降级]")
	}
}
