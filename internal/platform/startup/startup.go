package startup

import (
	"context"
	"fmt"

	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/SlpAus/form-record-backend/internal/platform/health"
	"go.uber.org/zap"
)

// InitializeApplication 是应用首次启动时执行的总入口。
// 它构建所有表单插件（包括创建记录表），失败时应用不能启动。
func InitializeApplication(ctx context.Context, registry *form.Registry, log *zap.Logger) error {
	log.Info("开始应用首次初始化...")

	if err := registry.Build(ctx); err != nil {
		return fmt.Errorf("表单插件初始化失败: %w", err)
	}

	// 每个表单启动一次，插件在 form.booted 中注册后台列表和子菜单
	for _, alias := range registry.Aliases() {
		if _, err := registry.Form(ctx, alias); err != nil {
			return fmt.Errorf("表单 %s 启动失败: %w", alias, err)
		}
	}

	log.Info("应用初始化完成！", zap.Strings("forms", registry.Aliases()))
	return nil
}

// CheckDependencies 在启动后阻塞式地执行一次健康检查，Redis不可用时只记录警告
func CheckDependencies(ctx context.Context, checker *health.Checker, status *health.Status, log *zap.Logger) {
	log.Info("正在执行启动后健康检查...")
	checker.PerformCheck(ctx)
	if !status.IsHealthy() {
		log.Warn("启动后健康检查未通过，表单会话接口将暂时不可用")
	}
}
