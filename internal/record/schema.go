package record

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tableIndex struct {
	name   string
	column string
}

// Schema 负责确保记录表和元数据表存在
type Schema struct {
	db     *gorm.DB
	tables Tables
	log    *zap.Logger
}

// NewSchema 创建表结构初始化器
func NewSchema(db *gorm.DB, tables Tables, log *zap.Logger) *Schema {
	return &Schema{db: db, tables: tables, log: log}
}

// Ensure 分别检查两张表，只创建缺失的表。
// 可以在每次启动时调用，已存在的表和数据不受影响。
func (s *Schema) Ensure(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	if err := s.ensureTable(db, s.tables.Records, &Record{}, []tableIndex{
		{name: "form_id", column: "form_id"},
	}); err != nil {
		return err
	}
	if err := s.ensureTable(db, s.tables.Meta, &RecordMeta{}, []tableIndex{
		{name: "tify_forms_record_id", column: "tify_forms_record_id"},
		{name: "meta_key", column: "meta_key"},
	}); err != nil {
		return err
	}
	return nil
}

func (s *Schema) ensureTable(db *gorm.DB, table string, model any, indexes []tableIndex) error {
	if db.Migrator().HasTable(table) {
		return nil
	}
	if err := db.Table(table).Migrator().CreateTable(model); err != nil {
		return fmt.Errorf("无法创建表 %s: %w", table, err)
	}

	// 索引名带上与表相同的前缀，多个站点共用一个数据库时不会冲突
	for _, idx := range indexes {
		err := db.Exec("CREATE INDEX IF NOT EXISTS ? ON ? (?)",
			clause.Table{Name: s.tables.Prefix + idx.name},
			clause.Table{Name: table},
			clause.Column{Name: idx.column},
		).Error
		if err != nil {
			return fmt.Errorf("无法在表 %s 上创建索引 %s: %w", table, idx.name, err)
		}
	}

	s.log.Info("数据库表创建成功", zap.String("table", table))
	return nil
}
