package form

import "strings"

// ColumnKind 区分 record.column 选项的三种写法
type ColumnKind int

const (
	// ColumnNone 不在后台列表中显示该字段
	ColumnNone ColumnKind = iota
	// ColumnTitle 显示该字段，并用给定字符串作为列标题
	ColumnTitle
	// ColumnSpec 显示该字段，Spec 中的键覆盖默认的列定义（true 对应空的 Spec）
	ColumnSpec
)

// ColumnOption 是 record.column 的解析结果
type ColumnOption struct {
	Kind  ColumnKind
	Title string
	Spec  map[string]string
}

// ParseColumnOption 将配置中的任意值转换为 ColumnOption。
// false、空字符串、nil 表示不显示；字符串只设置标题；true 或映射使用完整定义。
func ParseColumnOption(raw any) ColumnOption {
	switch v := raw.(type) {
	case nil:
		return ColumnOption{Kind: ColumnNone}
	case bool:
		if !v {
			return ColumnOption{Kind: ColumnNone}
		}
		return ColumnOption{Kind: ColumnSpec, Spec: map[string]string{}}
	case string:
		if v == "" {
			return ColumnOption{Kind: ColumnNone}
		}
		return ColumnOption{Kind: ColumnTitle, Title: v}
	case map[string]any:
		spec := make(map[string]string, len(v))
		for key, value := range v {
			if s, ok := value.(string); ok {
				spec[key] = s
			}
		}
		return ColumnOption{Kind: ColumnSpec, Spec: spec}
	case map[string]string:
		spec := make(map[string]string, len(v))
		for key, value := range v {
			spec[key] = value
		}
		return ColumnOption{Kind: ColumnSpec, Spec: spec}
	default:
		// 其它类型按真值处理，等价于 true
		return ColumnOption{Kind: ColumnSpec, Spec: map[string]string{}}
	}
}

// Enabled 报告该列是否需要显示
func (o ColumnOption) Enabled() bool {
	return o.Kind != ColumnNone
}

// BoolOption 将配置值解释为布尔开关
func BoolOption(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "no", "off":
			return false
		}
		return true
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}
