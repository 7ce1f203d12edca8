package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/form-record-backend/internal/form"
	"go.uber.org/zap"
)

// ErrRecordNotInserted 表示插入记录后没有得到ID，此时不会写入任何元数据
var ErrRecordNotInserted = errors.New("表单记录插入后未返回ID")

// Store 是保存一次提交所需的存储能力，*Repository 满足该接口
type Store interface {
	InsertGetID(ctx context.Context, rec *Record) (uint64, error)
	Find(ctx context.Context, id uint64) (*Record, error)
	SaveMeta(ctx context.Context, recordID uint64, key string, value *string) error
}

// Service 将通过校验的表单提交保存为记录和元数据
type Service struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

// NewService 创建保存服务
func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, now: time.Now, log: log}
}

// Save 保存活动表单的当前提交。
// 先插入记录，再按ID重新读取，然后为每个 record.save 为真的字段追加一条元数据。
// 各步骤之间没有事务：元数据写入失败时已写入的行会保留。
func (s *Service) Save(ctx context.Context, f *form.Form) (*Record, error) {
	payload := &Record{
		FormID:      f.Alias(),
		Session:     f.Session().Token(),
		Status:      StatusPublish,
		CreatedDate: s.now(),
	}

	id, err := s.store.InsertGetID(ctx, payload)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, ErrRecordNotInserted
	}

	rec, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("无法重新读取记录 %d: %w", id, err)
	}

	saved := 0
	for _, field := range f.Fields() {
		if !form.BoolOption(field.AddonOption(OptionSave)) {
			continue
		}
		value, err := EncodeValues(field.Values(), field.Multiple())
		if err != nil {
			return rec, fmt.Errorf("无法编码字段 %s 的值: %w", field.Slug(), err)
		}
		if err := s.store.SaveMeta(ctx, rec.ID, field.Slug(), value); err != nil {
			return rec, err
		}
		saved++
	}

	s.log.Debug("表单记录已保存",
		zap.String("form", rec.FormID),
		zap.Uint64("record", rec.ID),
		zap.Int("fields", saved))
	return rec, nil
}
