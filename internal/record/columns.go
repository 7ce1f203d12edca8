package record

import (
	"fmt"

	"github.com/SlpAus/form-record-backend/internal/form"
)

// DetailsColumn 是固定在第一列的记录信息
const DetailsColumn = "__record"

const detailsTitle = "Informations d'enregistrement"

// Column 是后台列表的一列。Source 为要显示的字段值的 slug。
type Column struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Source string `json:"-"`
}

// Render 计算一行在该列的内容
func (c Column) Render(item Item) string {
	if c.Key == DetailsColumn {
		rec := item.Record
		return fmt.Sprintf("#%d · %s · %s", rec.ID, rec.CreatedDate.Format("2006-01-02 15:04:05"), rec.Session)
	}
	return item.Value(c.Source)
}

// ListTable 是一个表单在后台的列表定义
type ListTable struct {
	Alias   string      `json:"alias"`
	Labels  form.Labels `json:"labels"`
	Columns []Column    `json:"columns"`
	Order   string      `json:"order"`
	Parent  string      `json:"parent_slug"`
}

// NewListTable 根据字段的 record.column 选项生成列定义
func NewListTable(f *form.Form) *ListTable {
	columns := []Column{{Key: DetailsColumn, Title: detailsTitle}}

	for _, field := range f.Fields() {
		opt := form.ParseColumnOption(field.AddonOption(OptionColumn))
		if !opt.Enabled() {
			continue
		}

		col := Column{Key: field.Slug(), Title: field.Title(), Source: field.Slug()}
		switch opt.Kind {
		case form.ColumnTitle:
			col.Title = opt.Title
		case form.ColumnSpec:
			if title, ok := opt.Spec["title"]; ok && title != "" {
				col.Title = title
			}
			if source, ok := opt.Spec["content"]; ok && source != "" {
				col.Source = source
			}
		}
		columns = append(columns, col)
	}

	return &ListTable{
		Alias:   f.Alias(),
		Labels:  f.Labels(),
		Columns: columns,
		Order:   "DESC",
		Parent:  MenuSlug,
	}
}

// Rows 将列表数据渲染为按列 key 索引的行
func (t *ListTable) Rows(items []Item) []map[string]string {
	rows := make([]map[string]string, len(items))
	for i, item := range items {
		row := make(map[string]string, len(t.Columns))
		for _, col := range t.Columns {
			row[col.Key] = col.Render(item)
		}
		rows[i] = row
	}
	return rows
}

// PreviewField 是单条记录详情中的一个字段
type PreviewField struct {
	Slug   string   `json:"slug"`
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// Preview 返回 record.preview 为真的字段及其保存的值
func Preview(f *form.Form, item Item) []PreviewField {
	fields := make([]PreviewField, 0, len(f.Fields()))
	for _, field := range f.Fields() {
		if !form.BoolOption(field.AddonOption(OptionPreview)) {
			continue
		}
		var values []string
		if raw, ok := item.Values[field.Slug()]; ok {
			values = DecodeValues(raw, field.Multiple())
		}
		fields = append(fields, PreviewField{Slug: field.Slug(), Title: field.Title(), Values: values})
	}
	return fields
}
