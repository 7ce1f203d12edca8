package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testPrefix = "form:submissions:"

func newRedisLimiter(t *testing.T, window time.Duration) (*RedisLimiter, *miniredis.Miniredis, *observer.ObservedLogs) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	return NewRedisLimiter(rdb, testPrefix, window, zap.New(core)), mr, logs
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	l, mr, _ := newRedisLimiter(t, time.Hour)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		count, res, err := l.Hit(ctx, "10.0.0.1", start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		res.Commit()
		assert.Equal(t, int64(i), count)
	}

	key := testPrefix + "10.0.0.1"
	members, err := mr.ZMembers(key)
	require.NoError(t, err)
	assert.Len(t, members, 3)
	assert.Equal(t, time.Hour+time.Hour/24, mr.TTL(key))

	// 其它IP单独计数
	count, _, err := l.Hit(ctx, "10.0.0.2", start)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 62分钟时前两条已经在窗口外
	count, _, err = l.Hit(ctx, "10.0.0.1", start.Add(62*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRedisLimiterRollback(t *testing.T) {
	l, mr, logs := newRedisLimiter(t, time.Hour)
	ctx := context.Background()
	now := time.Now()
	key := testPrefix + "::1"

	_, res, err := l.Hit(ctx, "::1", now)
	require.NoError(t, err)
	res.RollbackUnlessCommitted()

	members, err := mr.ZMembers(key)
	require.NoError(t, err)
	assert.Empty(t, members)

	count, res, err := l.Hit(ctx, "::1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	res.Commit()
	res.RollbackUnlessCommitted()

	members, err = mr.ZMembers(key)
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Zero(t, logs.Len())
}

func TestRedisLimiterRollbackFailureIsLogged(t *testing.T) {
	l, mr, logs := newRedisLimiter(t, time.Hour)

	_, res, err := l.Hit(context.Background(), "10.0.0.1", time.Now())
	require.NoError(t, err)

	mr.Close()
	res.RollbackUnlessCommitted()

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "补偿操作失败")
	assert.Equal(t, testPrefix+"10.0.0.1", entries[0].ContextMap()["key"])
}

func TestRedisLimiterErrors(t *testing.T) {
	l, mr, _ := newRedisLimiter(t, time.Hour)

	_, res, err := l.Hit(context.Background(), "not-an-ip", time.Now())
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Nil(t, res)

	mr.Close()
	_, res, err = l.Hit(context.Background(), "10.0.0.1", time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidKey)
	assert.Nil(t, res)
}
