package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound 表示会话不存在、已过期、已被使用或不属于该表单
var ErrSessionNotFound = errors.New("表单会话不存在或已过期")

// SessionStore 管理表单会话令牌。每个令牌只属于一个表单。
// Consume 原子地取走令牌并返回它剩余的有效期，同一个令牌只有一个调用者能成功；
// 提交未被接受时用 Restore 放回令牌，令牌已存在时 Restore 不做任何事。
type SessionStore interface {
	Issue(ctx context.Context, formID string) (string, error)
	Consume(ctx context.Context, formID, token string) (time.Duration, error)
	Restore(ctx context.Context, formID, token string, ttl time.Duration) error
}

func newSessionToken() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return id.String(), nil
}

type memorySession struct {
	formID    string
	expiresAt time.Time
}

// MemorySessionStore 是进程内的会话存储，用于测试和单实例部署
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

// NewMemorySessionStore 创建进程内会话存储
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) Issue(ctx context.Context, formID string) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	// 顺便清理过期会话
	for t, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, t)
		}
	}
	s.sessions[token] = memorySession{formID: formID, expiresAt: now.Add(s.ttl)}
	return token, nil
}

func (s *MemorySessionStore) Consume(ctx context.Context, formID, token string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	now := s.now()
	if !ok || sess.formID != formID || !now.Before(sess.expiresAt) {
		return 0, ErrSessionNotFound
	}
	delete(s.sessions, token)
	return sess.expiresAt.Sub(now), nil
}

func (s *MemorySessionStore) Restore(ctx context.Context, formID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[token]; exists {
		return nil
	}
	s.sessions[token] = memorySession{formID: formID, expiresAt: s.now().Add(ttl)}
	return nil
}
