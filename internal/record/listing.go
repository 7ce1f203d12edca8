package record

import (
	"context"
	"fmt"

	"github.com/SlpAus/form-record-backend/internal/form"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPerPage = 20
	maxPerPage     = 200
)

// ListQuery 返回后台列表的基础查询。
// 有活动表单时只包含该表单的记录，否则返回所有记录。
func ListQuery(db *gorm.DB, tables Tables, active *form.Form) *gorm.DB {
	query := db.Table(tables.Records)
	if active == nil {
		return query
	}
	return query.Where("form_id = ?", active.Alias())
}

// ListParams 是分页参数，页码从1开始
type ListParams struct {
	Page    int
	PerPage int
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// Item 是列表中的一行：记录本身加上按 meta_key 展开的字段值
type Item struct {
	Record Record            `json:"record"`
	Values map[string]string `json:"values"`
}

// Value 返回字段值，没有时为空字符串
func (i Item) Value(slug string) string {
	return i.Values[slug]
}

// ListResult 是一页列表数据
type ListResult struct {
	Items   []Item `json:"items"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// List 按ID倒序分页读取记录，并附上每条记录的元数据
func (r *Repository) List(ctx context.Context, active *form.Form, params ListParams) (*ListResult, error) {
	params = params.normalized()
	db := r.db.WithContext(ctx)

	var total int64
	if err := ListQuery(db, r.tables, active).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("无法统计表单记录: %w", err)
	}

	var records []Record
	err := ListQuery(db, r.tables, active).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "ID"}, Desc: true}).
		Offset((params.Page - 1) * params.PerPage).
		Limit(params.PerPage).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取表单记录: %w", err)
	}

	items, err := r.attachValues(ctx, records)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, nil
}

// Item 读取单条记录及其字段值
func (r *Repository) Item(ctx context.Context, id uint64) (*Item, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := r.attachValues(ctx, []Record{*rec})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *Repository) attachValues(ctx context.Context, records []Record) ([]Item, error) {
	items := make([]Item, len(records))
	if len(records) == 0 {
		return items, nil
	}

	ids := make([]uint64, len(records))
	index := make(map[uint64]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		index[rec.ID] = i
		items[i] = Item{Record: rec, Values: make(map[string]string)}
	}

	metas, err := r.Metas(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, meta := range metas {
		i, ok := index[meta.RecordID]
		if !ok || meta.MetaKey == nil {
			continue
		}
		value := ""
		if meta.MetaValue != nil {
			value = *meta.MetaValue
		}
		// 同名元数据以最后写入的为准
		items[i].Values[*meta.MetaKey] = value
	}
	return items, nil
}
