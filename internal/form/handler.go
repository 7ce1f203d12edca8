package form

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/form-record-backend/internal/ratelimit"
	"github.com/SlpAus/form-record-backend/pkg/token"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- API响应模型 ---

type FieldResponse struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Multiple bool   `json:"multiple"`
}

type FormResponse struct {
	Alias     string          `json:"alias"`
	Title     string          `json:"title"`
	Labels    Labels          `json:"labels"`
	Fields    []FieldResponse `json:"fields"`
	Session   string          `json:"session"`
	Signature string          `json:"signature"`
}

// SubmitRequestBody 定义了提交表单时请求体的JSON结构
type SubmitRequestBody struct {
	Session   string         `json:"session" binding:"required"`
	Signature string         `json:"signature" binding:"required"`
	Values    map[string]any `json:"values"`
}

// Handler 提供面向前台的表单接口
type Handler struct {
	registry *Registry
	sessions SessionStore
	signer   *token.Signer
	healthy  func() bool
	log      *zap.Logger

	limiter        ratelimit.Limiter
	maxSubmissions int64
	now            func() time.Time
}

// NewHandler 创建表单处理器。healthy 为 nil 时视为会话存储始终可用。
func NewHandler(registry *Registry, sessions SessionStore, signer *token.Signer, healthy func() bool, log *zap.Logger) *Handler {
	if healthy == nil {
		healthy = func() bool { return true }
	}
	return &Handler{registry: registry, sessions: sessions, signer: signer, healthy: healthy, log: log, now: time.Now}
}

// WithLimiter 限制每个客户端IP在窗口内成功提交的次数，max 不大于0时不限流
func (h *Handler) WithLimiter(limiter ratelimit.Limiter, max int64) *Handler {
	if max > 0 {
		h.limiter = limiter
		h.maxSubmissions = max
	}
	return h
}

// GetForm 返回表单定义并签发一个新的会话
func (h *Handler) GetForm(c *gin.Context) {
	alias := c.Param("alias")
	def, ok := h.registry.Definition(alias)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到表单 %s", alias)})
		return
	}
	if !h.healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}

	session, err := h.sessions.Issue(c.Request.Context(), alias)
	if err != nil {
		h.log.Error("签发表单会话失败", zap.String("form", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发表单会话失败"})
		return
	}
	signature, err := h.signer.Sign(token.SessionPayload{FormID: alias, Session: session})
	if err != nil {
		h.log.Error("签名表单会话失败", zap.String("form", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发表单会话失败"})
		return
	}

	resp := FormResponse{
		Alias:     def.Alias,
		Title:     def.Title,
		Labels:    def.Labels,
		Fields:    make([]FieldResponse, 0, len(def.Fields)),
		Session:   session,
		Signature: signature,
	}
	for _, field := range def.Fields {
		resp.Fields = append(resp.Fields, FieldResponse{Slug: field.Slug, Title: field.Title, Type: field.Type, Multiple: field.Multiple})
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitForm 校验会话和字段值，通过后触发表单的 handle.validated 事件
func (h *Handler) SubmitForm(c *gin.Context) {
	alias := c.Param("alias")
	if _, ok := h.registry.Definition(alias); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到表单 %s", alias)})
		return
	}

	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if !h.signer.Verify(token.SessionPayload{FormID: alias, Session: body.Session}, body.Signature) {
		c.JSON(http.StatusForbidden, gin.H{"error": "表单会话签名无效"})
		return
	}
	if !h.healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}

	ctx := c.Request.Context()
	reservation, ok := h.reserveSubmission(c, alias)
	if !ok {
		return
	}
	// 只有成功的提交计入频率限制
	defer reservation.RollbackUnlessCommitted()

	// 先取走会话，同一个会话的并发提交只有一个能继续
	remaining, err := h.sessions.Consume(ctx, alias, body.Session)
	if err != nil {
		h.respondSessionError(c, alias, err)
		return
	}

	f, err := h.registry.Form(ctx, alias)
	if err != nil {
		h.restoreSession(ctx, alias, body.Session, remaining)
		h.log.Error("创建表单实例失败", zap.String("form", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "处理表单失败"})
		return
	}
	f.SetSession(body.Session)

	if err := f.Handle(ctx, NormalizeValues(body.Values)); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			// 校验失败时没有写入任何数据，会话放回以便修改后重新提交
			h.restoreSession(ctx, alias, body.Session, remaining)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "表单校验失败", "fields": validationErr.Fields})
			return
		}
		h.log.Error("处理表单提交失败", zap.String("form", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "处理表单失败"})
		return
	}

	reservation.Commit()
	c.JSON(http.StatusOK, gin.H{"message": "提交成功"})
}

func (h *Handler) restoreSession(ctx context.Context, alias, session string, ttl time.Duration) {
	if err := h.sessions.Restore(ctx, alias, session, ttl); err != nil {
		h.log.Warn("恢复表单会话失败", zap.String("form", alias), zap.Error(err))
	}
}

// reserveSubmission 为客户端IP计数，超出限制或计数失败时已经写好响应
func (h *Handler) reserveSubmission(c *gin.Context, alias string) (*ratelimit.Reservation, bool) {
	if h.limiter == nil {
		return nil, true
	}
	count, reservation, err := h.limiter.Hit(c.Request.Context(), c.ClientIP(), h.now())
	if err != nil {
		if errors.Is(err, ratelimit.ErrInvalidKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无法识别客户端IP"})
			return nil, false
		}
		h.log.Error("提交频率计数失败", zap.String("form", alias), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return nil, false
	}
	if count > h.maxSubmissions {
		reservation.RollbackUnlessCommitted()
		h.log.Info("提交过于频繁", zap.String("form", alias), zap.String("ip", c.ClientIP()), zap.Int64("count", count))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "提交过于频繁，请稍后再试"})
		return nil, false
	}
	return reservation, true
}

func (h *Handler) respondSessionError(c *gin.Context, alias string, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	h.log.Error("读取表单会话失败", zap.String("form", alias), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "读取表单会话失败"})
}

// NormalizeValues 将JSON中的值统一为字符串切片，数组对应多值字段
func NormalizeValues(raw map[string]any) map[string][]string {
	values := make(map[string][]string, len(raw))
	for slug, v := range raw {
		switch typed := v.(type) {
		case nil:
			continue
		case string:
			values[slug] = []string{typed}
		case []any:
			list := make([]string, 0, len(typed))
			for _, item := range typed {
				if item == nil {
					continue
				}
				list = append(list, scalarString(item))
			}
			values[slug] = list
		default:
			values[slug] = []string{scalarString(typed)}
		}
	}
	return values
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
