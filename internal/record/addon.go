package record

import (
	"context"
	"fmt"
	"sync"

	"github.com/SlpAus/form-record-backend/internal/admin"
	"github.com/SlpAus/form-record-backend/internal/form"
	"go.uber.org/zap"
)

// AddonName 是表单定义中启用本插件的键
const AddonName = "record"

// EventSave 由 handle.validated 的监听器同步触发，真正执行保存
const EventSave = "addon.record.save"

// 字段选项，完整键名为 record.<选项>
const (
	OptionColumn  = AddonName + ".column"
	OptionSave    = AddonName + ".save"
	OptionPreview = AddonName + ".preview"
)

// 后台菜单
const (
	MenuSlug  = "form_addon_record"
	MenuLabel = "Formulaires"
	MenuIcon  = "dashicons-clipboard"
)

// Addon 是表单记录插件：初始化表结构、注册后台菜单和列表、在提交通过校验后保存记录
type Addon struct {
	schema  *Schema
	service *Service
	menu    *admin.Menu
	log     *zap.Logger

	mu     sync.RWMutex
	tables map[string]*ListTable
}

// NewAddon 创建插件
func NewAddon(schema *Schema, service *Service, menu *admin.Menu, log *zap.Logger) *Addon {
	return &Addon{
		schema:  schema,
		service: service,
		menu:    menu,
		log:     log,
		tables:  make(map[string]*ListTable),
	}
}

func (a *Addon) Name() string {
	return AddonName
}

// DefaultFieldOptions 默认显示、预览并保存所有字段
func (a *Addon) DefaultFieldOptions() map[string]any {
	return map[string]any{
		"column":  true,
		"preview": true,
		"save":    true,
	}
}

// Build 确保数据表存在并注册顶级后台菜单
func (a *Addon) Build(ctx context.Context) error {
	if err := a.schema.Ensure(ctx); err != nil {
		return err
	}
	a.menu.Add(admin.Entry{Slug: MenuSlug, Label: MenuLabel, Icon: MenuIcon})
	return nil
}

// Boot 在表单实例上注册三个监听器。
// handle.validated 同步触发 addon.record.save，保证保存总是在校验之后、同一请求内完成。
func (a *Addon) Boot(f *form.Form) error {
	f.Events().
		Listen(form.EventBooted, func(ctx context.Context) error {
			a.registerListTable(f)
			return nil
		}).
		Listen(form.EventHandleValidated, func(ctx context.Context) error {
			return f.Event(ctx, EventSave)
		}).
		Listen(EventSave, func(ctx context.Context) error {
			a.save(ctx, f)
			return nil
		})
	return nil
}

// save 的失败不会传给提交者，只记录日志
func (a *Addon) save(ctx context.Context, f *form.Form) {
	rec, err := a.service.Save(ctx, f)
	if err != nil {
		fields := []zap.Field{zap.String("form", f.Alias()), zap.Error(err)}
		if rec != nil {
			fields = append(fields, zap.Uint64("record", rec.ID))
		}
		a.log.Warn("保存表单记录失败", fields...)
	}
}

func (a *Addon) registerListTable(f *form.Form) {
	table := NewListTable(f)

	a.mu.Lock()
	a.tables[f.Alias()] = table
	a.mu.Unlock()

	a.menu.Add(admin.Entry{
		Slug:   ListTableSlug(f.Alias()),
		Label:  f.Labels().Plural,
		Parent: MenuSlug,
	})
}

// ListTable 返回表单启动时注册的列表定义
func (a *Addon) ListTable(alias string) (*ListTable, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	table, ok := a.tables[alias]
	return table, ok
}

// ListTableSlug 是表单记录列表在后台菜单中的 slug
func ListTableSlug(alias string) string {
	return fmt.Sprintf("%s_%s", MenuSlug, alias)
}
