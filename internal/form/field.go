package form

import "strings"

// Field 是一个表单实例中的字段，持有本次请求提交的值
type Field struct {
	def     FieldDefinition
	options map[string]map[string]any
	values  []string
}

func newField(def FieldDefinition, options map[string]map[string]any) *Field {
	return &Field{def: def, options: options}
}

func (f *Field) Slug() string  { return f.def.Slug }
func (f *Field) Title() string { return f.def.Title }
func (f *Field) Type() string  { return f.def.Type }
func (f *Field) Rules() string { return f.def.Rules }

// Multiple 报告字段是否接受多个值
func (f *Field) Multiple() bool { return f.def.Multiple }

// Values 返回提交的所有值，未提交时为空
func (f *Field) Values() []string {
	return f.values
}

// Value 返回第一个提交值
func (f *Field) Value() string {
	if len(f.values) == 0 {
		return ""
	}
	return f.values[0]
}

// SetValues 替换字段的提交值
func (f *Field) SetValues(values []string) {
	f.values = append([]string(nil), values...)
}

// AddonOption 按 "插件名.选项名" 读取字段的插件选项，
// 字段未配置的选项取插件的默认值，插件未启用时返回 nil。
func (f *Field) AddonOption(key string) any {
	addon, name, ok := strings.Cut(key, ".")
	if !ok {
		return nil
	}
	opts, ok := f.options[addon]
	if !ok {
		return nil
	}
	return opts[name]
}
