package record

import (
	"encoding/json"
	"strings"
)

// StripSlashes 去掉转义用的反斜杠：`\x` 还原为 x，`\\` 还原为一个反斜杠，
// `\0` 还原为NUL字节，末尾单独的反斜杠被丢弃
func StripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
			if r == '0' {
				b.WriteByte(0)
				continue
			}
			b.WriteRune(r)
		case r == '\\':
			escaped = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeValues 生成 meta_value。没有值时为 NULL。
// 多值字段总是保存为JSON数组；单值字段原样保存最后一个值。
func EncodeValues(values []string, multiple bool) (*string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if !multiple {
		v := StripSlashes(values[len(values)-1])
		return &v, nil
	}

	cleaned := make([]string, len(values))
	for i, v := range values {
		cleaned[i] = StripSlashes(v)
	}
	data, err := json.Marshal(cleaned)
	if err != nil {
		return nil, err
	}
	v := string(data)
	return &v, nil
}

// DecodeValues 是 EncodeValues 的逆操作，只有多值字段才按JSON解析
func DecodeValues(value string, multiple bool) []string {
	if multiple {
		var list []string
		if err := json.Unmarshal([]byte(value), &list); err == nil {
			return list
		}
	}
	return []string{value}
}
