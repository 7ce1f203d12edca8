package api

import (
	"github.com/SlpAus/form-record-backend/internal/admin"
	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/SlpAus/form-record-backend/internal/record"
	"github.com/gin-gonic/gin"
)

// Handlers 汇总需要注册路由的处理器
type Handlers struct {
	Forms   *form.Handler
	Records *record.Handler
	Menu    *admin.Menu
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api")
	{
		// 公开的表单接口
		formRoutes := api.Group("/forms")
		{
			formRoutes.GET("/:alias", h.Forms.GetForm)
			formRoutes.POST("/:alias/submit", h.Forms.SubmitForm)
		}

		// 后台接口
		adminRoutes := api.Group("/admin")
		{
			adminRoutes.GET("/menu", h.Menu.GetMenu)
			adminRoutes.GET("/records", h.Records.ListAllRecords)
			adminRoutes.GET("/forms/:alias/records", h.Records.ListFormRecords)
			adminRoutes.GET("/forms/:alias/records/:id", h.Records.GetFormRecord)
		}
	}
}
