package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Addon 是挂载到表单上的插件
type Addon interface {
	// Name 是插件在表单定义 addons 中使用的键
	Name() string
	// Build 在进程启动时执行一次
	Build(ctx context.Context) error
	// Boot 在每个表单实例上注册监听器
	Boot(f *Form) error
	// DefaultFieldOptions 是字段未配置时使用的选项
	DefaultFieldOptions() map[string]any
}

// Session 是当前表单会话
type Session struct {
	token string
}

// Token 返回会话令牌
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// ValidationError 汇总未通过校验的字段，键为字段 slug
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	slugs := make([]string, 0, len(e.Fields))
	for slug := range e.Fields {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return fmt.Sprintf("表单校验失败: %s", strings.Join(slugs, ", "))
}

// Form 是处理某个请求时的活动表单上下文
type Form struct {
	def      *Definition
	fields   []*Field
	events   *Dispatcher
	session  *Session
	validate *validator.Validate
}

func (f *Form) Alias() string       { return f.def.Alias }
func (f *Form) Title() string       { return f.def.Title }
func (f *Form) Labels() Labels      { return f.def.Labels }
func (f *Form) Fields() []*Field    { return f.fields }
func (f *Form) Events() *Dispatcher { return f.events }
func (f *Form) Session() *Session   { return f.session }

// SetSession 绑定本次请求的会话令牌
func (f *Form) SetSession(token string) {
	f.session = &Session{token: token}
}

// Field 按 slug 查找字段
func (f *Form) Field(slug string) (*Field, bool) {
	for _, field := range f.fields {
		if field.Slug() == slug {
			return field, true
		}
	}
	return nil, false
}

// HasAddon 报告表单是否启用了某个插件
func (f *Form) HasAddon(name string) bool {
	_, ok := f.def.Addons[name]
	return ok
}

// Event 在表单上触发事件
func (f *Form) Event(ctx context.Context, event string) error {
	return f.events.Dispatch(ctx, event)
}

// Handle 绑定提交的值并逐字段校验。
// 全部通过时同步触发 handle.validated，监听器的错误原样返回。
func (f *Form) Handle(ctx context.Context, values map[string][]string) error {
	for _, field := range f.fields {
		field.SetValues(values[field.Slug()])
	}

	failures := make(map[string]string)
	for _, field := range f.fields {
		if field.Rules() == "" {
			continue
		}
		candidates := field.Values()
		if len(candidates) == 0 {
			candidates = []string{""}
		}
		for _, v := range candidates {
			if err := f.validate.Var(v, field.Rules()); err != nil {
				failures[field.Slug()] = describeValidation(err)
				break
			}
		}
	}
	if len(failures) > 0 {
		return &ValidationError{Fields: failures}
	}

	return f.Event(ctx, EventHandleValidated)
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("未通过校验规则 %s=%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("未通过校验规则 %s", fe.Tag())
	}
	return err.Error()
}
