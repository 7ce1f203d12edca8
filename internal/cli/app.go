package cli

import (
	"context"
	"fmt"

	"github.com/SlpAus/form-record-backend/internal/admin"
	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/SlpAus/form-record-backend/internal/platform/config"
	"github.com/SlpAus/form-record-backend/internal/platform/database"
	"github.com/SlpAus/form-record-backend/internal/platform/logging"
	"github.com/SlpAus/form-record-backend/internal/record"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app 是命令行使用的最小组件集合，不连接Redis
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *gorm.DB
	tables record.Tables
	repo   *record.Repository
	schema *record.Schema
}

func openApp(opts *RootOptions) (*app, error) {
	var paths []string
	if opts.ConfigDir != "" {
		paths = append(paths, opts.ConfigDir)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return nil, fmt.Errorf("无法加载配置: %w", err)
	}

	log := zap.NewNop()
	if opts.Verbose {
		if log, err = logging.New("debug"); err != nil {
			return nil, err
		}
	}

	db, err := database.InitDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	tables := record.NewTables(cfg.Database.TablePrefix)
	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		tables: tables,
		repo:   record.NewRepository(db, tables),
		schema: record.NewSchema(db, tables, log),
	}, nil
}

// registry 加载表单定义并初始化记录插件
func (a *app) registry(ctx context.Context) (*form.Registry, error) {
	defs, err := form.LoadDefinitions(a.cfg.Forms.Path)
	if err != nil {
		return nil, err
	}
	addon := record.NewAddon(a.schema, record.NewService(a.repo, a.log), admin.NewMenu(), a.log)
	registry, err := form.NewRegistry(defs, addon)
	if err != nil {
		return nil, err
	}
	if err := registry.Build(ctx); err != nil {
		return nil, err
	}
	return registry, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	_ = database.CloseDB(a.db)
}
