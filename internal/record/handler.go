package record

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- API响应模型 ---

type ListResponse struct {
	Table   *ListTable          `json:"table,omitempty"`
	Rows    []map[string]string `json:"rows,omitempty"`
	Items   []Item              `json:"items"`
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

type RecordResponse struct {
	Record  Record         `json:"record"`
	Preview []PreviewField `json:"preview"`
}

// Handler 提供后台的记录查询接口
type Handler struct {
	registry *form.Registry
	addon    *Addon
	repo     *Repository
	log      *zap.Logger
}

// NewHandler 创建后台记录处理器
func NewHandler(registry *form.Registry, addon *Addon, repo *Repository, log *zap.Logger) *Handler {
	return &Handler{registry: registry, addon: addon, repo: repo, log: log}
}

func parseListParams(c *gin.Context) ListParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	return ListParams{Page: page, PerPage: perPage}
}

// activeForm 启动请求中的表单，失败时已经写好响应
func (h *Handler) activeForm(c *gin.Context) (*form.Form, bool) {
	alias := c.Param("alias")
	f, err := h.registry.Form(c.Request.Context(), alias)
	if err != nil {
		if errors.Is(err, form.ErrUnknownForm) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到表单 %s", alias)})
			return nil, false
		}
		h.log.Error("创建表单实例失败", zap.String("form", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建表单实例失败"})
		return nil, false
	}
	if !f.HasAddon(AddonName) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("表单 %s 未启用记录插件", alias)})
		return nil, false
	}
	return f, true
}

// ListFormRecords 返回某个表单的记录列表
func (h *Handler) ListFormRecords(c *gin.Context) {
	f, ok := h.activeForm(c)
	if !ok {
		return
	}

	result, err := h.repo.List(c.Request.Context(), f, parseListParams(c))
	if err != nil {
		h.log.Error("读取表单记录失败", zap.String("form", f.Alias()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取表单记录失败"})
		return
	}

	table, _ := h.addon.ListTable(f.Alias())
	resp := ListResponse{
		Table:   table,
		Items:   result.Items,
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	}
	if table != nil {
		resp.Rows = table.Rows(result.Items)
	}
	c.JSON(http.StatusOK, resp)
}

// ListAllRecords 返回所有表单的记录，不带表单上下文
func (h *Handler) ListAllRecords(c *gin.Context) {
	result, err := h.repo.List(c.Request.Context(), nil, parseListParams(c))
	if err != nil {
		h.log.Error("读取表单记录失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取表单记录失败"})
		return
	}
	c.JSON(http.StatusOK, ListResponse{
		Items:   result.Items,
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	})
}

// GetFormRecord 返回单条记录以及可预览的字段
func (h *Handler) GetFormRecord(c *gin.Context) {
	f, ok := h.activeForm(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "记录ID格式错误"})
		return
	}

	item, err := h.repo.Item(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到ID为 %d 的记录", id)})
			return
		}
		h.log.Error("读取表单记录失败", zap.Uint64("record", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取表单记录失败"})
		return
	}
	// 记录必须属于当前表单
	if item.Record.FormID != f.Alias() {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到ID为 %d 的记录", id)})
		return
	}

	c.JSON(http.StatusOK, RecordResponse{Record: item.Record, Preview: Preview(f, *item)})
}
