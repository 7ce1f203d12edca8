package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownForm = errors.New("表单不存在")
	ErrNotBuilt    = errors.New("插件尚未初始化")
)

// Registry 保存所有表单定义和插件，并负责插件的一次性初始化
type Registry struct {
	defs     map[string]*Definition
	order    []string
	addons   map[string]Addon
	validate *validator.Validate

	mu    sync.Mutex
	built bool
}

// NewRegistry 创建注册表，表单引用了未注册的插件时返回错误
func NewRegistry(defs []Definition, addons ...Addon) (*Registry, error) {
	r := &Registry{
		defs:     make(map[string]*Definition, len(defs)),
		addons:   make(map[string]Addon, len(addons)),
		validate: validator.New(),
	}
	for _, addon := range addons {
		r.addons[addon.Name()] = addon
	}
	for i := range defs {
		def := defs[i]
		if _, dup := r.defs[def.Alias]; dup {
			return nil, fmt.Errorf("表单 alias 重复: %s", def.Alias)
		}
		for name := range def.Addons {
			if _, ok := r.addons[name]; !ok {
				return nil, fmt.Errorf("表单 %s 引用了未注册的插件 %s", def.Alias, name)
			}
		}
		r.defs[def.Alias] = &def
		r.order = append(r.order, def.Alias)
	}
	return r, nil
}

// Build 初始化所有插件，只在第一次调用时生效。
// 失败时状态保持未初始化，允许调用方重试。
func (r *Registry) Build(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.built {
		return nil
	}
	for _, addon := range r.addons {
		if err := addon.Build(ctx); err != nil {
			return fmt.Errorf("插件 %s 初始化失败: %w", addon.Name(), err)
		}
	}
	r.built = true
	return nil
}

// IsBuilt 报告插件是否已经初始化
func (r *Registry) IsBuilt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.built
}

// Aliases 按定义顺序返回所有表单 alias
func (r *Registry) Aliases() []string {
	return append([]string(nil), r.order...)
}

// Definition 返回表单定义
func (r *Registry) Definition(alias string) (*Definition, bool) {
	def, ok := r.defs[alias]
	return def, ok
}

// Form 为当前请求创建一个新的表单实例，启动其插件并触发 form.booted
func (r *Registry) Form(ctx context.Context, alias string) (*Form, error) {
	if !r.IsBuilt() {
		return nil, ErrNotBuilt
	}
	def, ok := r.defs[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, alias)
	}

	f := &Form{
		def:      def,
		events:   NewDispatcher(),
		validate: r.validate,
	}
	for _, fieldDef := range def.Fields {
		f.fields = append(f.fields, newField(fieldDef, r.fieldOptions(def, fieldDef)))
	}

	for _, name := range addonNames(def) {
		if err := r.addons[name].Boot(f); err != nil {
			return nil, fmt.Errorf("插件 %s 启动失败: %w", name, err)
		}
	}
	if err := f.Event(ctx, EventBooted); err != nil {
		return nil, err
	}
	return f, nil
}

// fieldOptions 合并插件默认选项和字段配置，只包含表单启用的插件
func (r *Registry) fieldOptions(def *Definition, fieldDef FieldDefinition) map[string]map[string]any {
	options := make(map[string]map[string]any, len(def.Addons))
	for name := range def.Addons {
		merged := make(map[string]any)
		for k, v := range r.addons[name].DefaultFieldOptions() {
			merged[k] = v
		}
		for k, v := range fieldDef.Addons[name] {
			merged[k] = v
		}
		options[name] = merged
	}
	return options
}

// addonNames 返回表单启用的插件名，按名称排序以保证监听器注册顺序稳定
func addonNames(def *Definition) []string {
	names := make([]string, 0, len(def.Addons))
	for name := range def.Addons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
