package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix 是会话在Redis中的键名前缀
// Key: form:session:<token>
// Value: 表单 alias
const sessionKeyPrefix = "form:session:"

// RedisSessionStore 将会话保存在Redis中，过期由TTL负责
type RedisSessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisSessionStore 创建Redis会话存储
func NewRedisSessionStore(rdb redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Issue(ctx context.Context, formID string) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, formID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("无法写入表单会话: %w", err)
	}
	return token, nil
}

// Consume 在一个事务中读取剩余TTL并 GETDEL，并发请求中只有一个能拿到令牌
func (s *RedisSessionStore) Consume(ctx context.Context, formID, token string) (time.Duration, error) {
	key := sessionKeyPrefix + token

	var ttlCmd *redis.DurationCmd
	var getCmd *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		ttlCmd = pipe.PTTL(ctx, key)
		getCmd = pipe.GetDel(ctx, key)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("无法消费表单会话: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl <= 0 {
		// 键没有过期时间时按完整有效期处理
		ttl = s.ttl
	}
	if owner := getCmd.Val(); owner != formID {
		// 令牌属于其它表单，原样放回
		if err := s.Restore(ctx, owner, token, ttl); err != nil {
			return 0, err
		}
		return 0, ErrSessionNotFound
	}
	return ttl, nil
}

// Restore 使用 SET NX 放回令牌，不会覆盖已经存在的会话
func (s *RedisSessionStore) Restore(ctx context.Context, formID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.SetNX(ctx, sessionKeyPrefix+token, formID, ttl).Err(); err != nil {
		return fmt.Errorf("无法恢复表单会话: %w", err)
	}
	return nil
}
