package form

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Labels 是表单在后台列表中使用的名称
type Labels struct {
	// Gender 为 true 表示阴性名词，后台文案据此选择冠词
	Gender   bool   `yaml:"gender" json:"gender"`
	Singular string `yaml:"singular" json:"singular"`
	Plural   string `yaml:"plural" json:"plural"`
}

// FieldDefinition 描述表单中的一个字段
type FieldDefinition struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
	Type  string `yaml:"type"`
	// Rules 是 validator 的规则字符串，例如 "required,email"
	Rules string `yaml:"rules"`
	// Multiple 表示字段可以提交多个值，例如复选框组
	Multiple bool `yaml:"multiple"`
	// Addons 按插件名保存字段级选项，例如 addons.record.save
	Addons map[string]map[string]any `yaml:"addons"`
}

// Definition 描述一个表单，Alias 是它在整个系统中的标识
type Definition struct {
	Alias  string `yaml:"alias"`
	Title  string `yaml:"title"`
	Labels Labels `yaml:"labels"`
	// Addons 的键决定表单启用哪些插件，值是表单级参数
	Addons map[string]map[string]any `yaml:"addons"`
	Fields []FieldDefinition         `yaml:"fields"`
}

type definitionsFile struct {
	Forms []Definition `yaml:"forms"`
}

// LoadDefinitions 从YAML文件读取所有表单定义
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取表单定义文件 %s: %w", path, err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions 解析并校验表单定义
func ParseDefinitions(data []byte) ([]Definition, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("无法解析表单定义: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Forms))
	for i := range file.Forms {
		def := &file.Forms[i]
		if def.Alias == "" {
			return nil, fmt.Errorf("第 %d 个表单缺少 alias", i+1)
		}
		if _, dup := seen[def.Alias]; dup {
			return nil, fmt.Errorf("表单 alias 重复: %s", def.Alias)
		}
		seen[def.Alias] = struct{}{}

		if err := def.normalize(); err != nil {
			return nil, err
		}
	}
	return file.Forms, nil
}

func (d *Definition) normalize() error {
	if d.Title == "" {
		d.Title = d.Alias
	}
	if d.Labels.Singular == "" {
		d.Labels.Singular = d.Title
	}
	if d.Labels.Plural == "" {
		d.Labels.Plural = d.Labels.Singular + "s"
	}

	slugs := make(map[string]struct{}, len(d.Fields))
	for i := range d.Fields {
		field := &d.Fields[i]
		if field.Slug == "" {
			return fmt.Errorf("表单 %s 的第 %d 个字段缺少 slug", d.Alias, i+1)
		}
		if _, dup := slugs[field.Slug]; dup {
			return fmt.Errorf("表单 %s 的字段 slug 重复: %s", d.Alias, field.Slug)
		}
		slugs[field.Slug] = struct{}{}
		if field.Title == "" {
			field.Title = field.Slug
		}
		if field.Type == "" {
			field.Type = "text"
		}
	}
	return nil
}
