package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"net"
	"time"
)

// ErrInvalidKey 表示限流键不是合法的IP地址
var ErrInvalidKey = errors.New("限流键不是有效的IP地址")

// Limiter 在滑动时间窗口内为一个客户端IP计数。
// Hit 记录一次新的请求并返回窗口内的总数，以及用于回滚本次计数的句柄。
type Limiter interface {
	Hit(ctx context.Context, ip string, at time.Time) (int64, *Reservation, error)
}

// Reservation 封装了一次计数增加操作的回滚逻辑。
// 在业务流程失败时，通过 defer RollbackUnlessCommitted 撤销本次计数。
type Reservation struct {
	committed bool
	rollback  func()
}

// Commit 标记业务流程已成功，阻止后续的回滚操作
func (r *Reservation) Commit() {
	if r != nil {
		r.committed = true
	}
}

// RollbackUnlessCommitted 如果 Commit 没有被调用，撤销本次计数
func (r *Reservation) RollbackUnlessCommitted() {
	if r == nil || r.committed || r.rollback == nil {
		return
	}
	r.rollback()
	r.committed = true
}

func validateIP(ip string) error {
	if ip == "" || net.ParseIP(ip) == nil {
		return ErrInvalidKey
	}
	return nil
}

// generateUniqueID 根据给定的时间生成一个16字节的、抗冲突的ID，并编码为Base64字符串。
// 结构: [ 8字节纳秒时间戳 (Big Endian) | 8字节随机数 ]
func generateUniqueID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
