package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterCountsWithinWindow(t *testing.T) {
	l := NewMemoryLimiter(time.Hour)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		count, res, err := l.Hit(ctx, "10.0.0.1", start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		res.Commit()
		assert.Equal(t, int64(i), count)
	}

	// 其它IP单独计数
	count, _, err := l.Hit(ctx, "10.0.0.2", start)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 窗口外的记录被清理
	count, _, err = l.Hit(ctx, "10.0.0.1", start.Add(62*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestReservationRollback(t *testing.T) {
	l := NewMemoryLimiter(time.Hour)
	ctx := context.Background()
	now := time.Now()

	_, res, err := l.Hit(ctx, "::1", now)
	require.NoError(t, err)
	res.RollbackUnlessCommitted()
	res.RollbackUnlessCommitted()

	count, res, err := l.Hit(ctx, "::1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	res.Commit()
	res.RollbackUnlessCommitted()

	count, _, err = l.Hit(ctx, "::1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var nilRes *Reservation
	assert.NotPanics(t, nilRes.RollbackUnlessCommitted)
}

func TestInvalidIP(t *testing.T) {
	l := NewMemoryLimiter(time.Hour)
	for _, ip := range []string{"", "not-an-ip"} {
		_, res, err := l.Hit(context.Background(), ip, time.Now())
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Nil(t, res)
	}
}

func TestGenerateUniqueID(t *testing.T) {
	now := time.Now()
	a, err := generateUniqueID(now)
	require.NoError(t, err)
	b, err := generateUniqueID(now)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 22)
}
