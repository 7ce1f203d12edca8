package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/form-record-backend/api"
	"github.com/SlpAus/form-record-backend/internal/admin"
	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/SlpAus/form-record-backend/internal/platform/config"
	"github.com/SlpAus/form-record-backend/internal/platform/database"
	"github.com/SlpAus/form-record-backend/internal/platform/health"
	"github.com/SlpAus/form-record-backend/internal/platform/logging"
	"github.com/SlpAus/form-record-backend/internal/platform/shutdown"
	"github.com/SlpAus/form-record-backend/internal/platform/startup"
	"github.com/SlpAus/form-record-backend/internal/ratelimit"
	"github.com/SlpAus/form-record-backend/internal/record"
	"github.com/SlpAus/form-record-backend/pkg/lifecycle"
	"github.com/SlpAus/form-record-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	log, err := logging.New(cfg.Server.Mode)
	if err != nil {
		panic(fmt.Sprintf("无法创建日志: %v", err))
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	signer, err := newSigner(cfg.Session.Secret, log)
	if err != nil {
		log.Fatal("无法创建会话签名器", zap.Error(err))
	}

	db, err := database.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal("数据库初始化失败", zap.Error(err))
	}
	rdb, err := database.InitRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Redis初始化失败", zap.Error(err))
	}

	defs, err := form.LoadDefinitions(cfg.Forms.Path)
	if err != nil {
		log.Fatal("无法加载表单定义", zap.String("path", cfg.Forms.Path), zap.Error(err))
	}

	// 组装记录插件
	tables := record.NewTables(cfg.Database.TablePrefix)
	repo := record.NewRepository(db, tables)
	menu := admin.NewMenu()
	addon := record.NewAddon(
		record.NewSchema(db, tables, log),
		record.NewService(repo, log),
		menu,
		log,
	)
	registry, err := form.NewRegistry(defs, addon)
	if err != nil {
		log.Fatal("无法创建表单注册表", zap.Error(err))
	}

	// 1. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(ctx, registry, log); err != nil {
		log.Fatal("应用初始化失败，无法启动", zap.Error(err))
	}

	// 2. 阻塞式执行一次启动后健康检查，然后在后台持续检查
	status := health.NewStatus(log)
	checker := health.NewChecker(rdb, status, log)
	startup.CheckDependencies(ctx, checker, status, log)

	lifecycleMgr := lifecycle.NewManager(log)
	checkerHandle, err := lifecycleMgr.NewServiceHandle("redis-health-checker")
	if err != nil {
		log.Fatal("无法注册健康检查器", zap.Error(err))
	}
	go checker.Run(checkerHandle)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	formHandler := form.NewHandler(registry, form.NewRedisSessionStore(rdb, cfg.Redis.SessionTTL), signer, status.IsHealthy, log).
		WithLimiter(ratelimit.NewRedisLimiter(rdb, "form:submissions:", cfg.Limits.Window, log), cfg.Limits.Submissions)

	api.SetupRoutes(r, api.Handlers{
		Forms:   formHandler,
		Records: record.NewHandler(registry, addon, repo, log),
		Menu:    menu,
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		log.Info("服务器已准备就绪，开始监听", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	coordinator := shutdown.NewCoordinator(lifecycleMgr, log,
		shutdown.Closer{Name: "redis", Close: rdb.Close},
		shutdown.Closer{Name: "database", Close: func() error { return database.CloseDB(db) }},
	)
	coordinator.ListenForSignalsAndShutdown(server)
}

// newSigner 使用配置的密钥，未配置时随机生成，重启后旧会话失效
func newSigner(secret string, log *zap.Logger) (*token.Signer, error) {
	if secret != "" {
		return token.NewSigner([]byte(secret))
	}
	log.Warn("未配置 session.secret，使用随机密钥")
	return token.NewRandomSigner()
}
