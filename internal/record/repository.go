package record

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRecordNotFound 表示按ID找不到记录
var ErrRecordNotFound = errors.New("记录不存在")

// Repository 负责记录表和元数据表的读写
type Repository struct {
	db     *gorm.DB
	tables Tables
}

// NewRepository 创建仓库，db 是进程共享的连接
func NewRepository(db *gorm.DB, tables Tables) *Repository {
	return &Repository{db: db, tables: tables}
}

// Tables 返回仓库使用的表名
func (r *Repository) Tables() Tables {
	return r.tables
}

// InsertGetID 插入一条记录并返回自增ID
func (r *Repository) InsertGetID(ctx context.Context, rec *Record) (uint64, error) {
	if err := r.db.WithContext(ctx).Table(r.tables.Records).Create(rec).Error; err != nil {
		return 0, fmt.Errorf("无法插入表单记录: %w", err)
	}
	return rec.ID, nil
}

// Find 按ID重新读取记录
func (r *Repository) Find(ctx context.Context, id uint64) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).Table(r.tables.Records).
		Where(clause.Eq{Column: clause.Column{Name: "ID"}, Value: id}).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("无法读取表单记录 %d: %w", id, err)
	}
	return &rec, nil
}

// SaveMeta 为记录追加一条元数据，从不覆盖已有的行
func (r *Repository) SaveMeta(ctx context.Context, recordID uint64, key string, value *string) error {
	meta := RecordMeta{
		RecordID:  recordID,
		MetaKey:   &key,
		MetaValue: value,
	}
	if err := r.db.WithContext(ctx).Table(r.tables.Meta).Create(&meta).Error; err != nil {
		return fmt.Errorf("无法为记录 %d 写入元数据 %s: %w", recordID, key, err)
	}
	return nil
}

// Metas 按 meta_id 顺序返回给定记录的所有元数据
func (r *Repository) Metas(ctx context.Context, recordIDs ...uint64) ([]RecordMeta, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}
	var metas []RecordMeta
	err := r.db.WithContext(ctx).Table(r.tables.Meta).
		Where("tify_forms_record_id IN ?", recordIDs).
		Order("meta_id ASC").
		Find(&metas).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取记录元数据: %w", err)
	}
	return metas, nil
}
