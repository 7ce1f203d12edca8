package record

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SlpAus/form-record-backend/internal/admin"
	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testFormsYAML = `
forms:
  - alias: contact
    title: Contact
    labels:
      singular: demande
      plural: demandes
    addons:
      record: {}
    fields:
      - slug: email
        title: E-mail
        rules: required,email
        addons:
          record:
            column: Adresse
      - slug: name
        title: Nom
        addons:
          record:
            column:
              title: Nom complet
      - slug: tags
        title: Tags
        multiple: true
        addons:
          record:
            column: false
      - slug: honeypot
        title: Piege
        addons:
          record:
            save: false
            column: false
            preview: false
  - alias: newsletter
    addons:
      record: {}
    fields:
      - slug: email
        rules: required,email
  - alias: plain
    fields:
      - slug: x
`

// newTestDB 为每个测试创建独立的内存数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// RecordSuite 组装真实的仓库、插件和表单注册表
type RecordSuite struct {
	suite.Suite
	db       *gorm.DB
	tables   Tables
	repo     *Repository
	service  *Service
	addon    *Addon
	menu     *admin.Menu
	registry *form.Registry
	now      time.Time
}

func (s *RecordSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.tables = NewTables("")
	s.repo = NewRepository(s.db, s.tables)
	s.service = NewService(s.repo, zap.NewNop())
	s.now = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.menu = admin.NewMenu()
	s.addon = NewAddon(NewSchema(s.db, s.tables, zap.NewNop()), s.service, s.menu, zap.NewNop())

	defs, err := form.ParseDefinitions([]byte(testFormsYAML))
	s.Require().NoError(err)
	s.registry, err = form.NewRegistry(defs, s.addon)
	s.Require().NoError(err)
	s.Require().NoError(s.registry.Build(context.Background()))
}

func (s *RecordSuite) form(alias string) *form.Form {
	f, err := s.registry.Form(context.Background(), alias)
	s.Require().NoError(err)
	return f
}

// submit 模拟一次完整的提交流程：绑定会话、校验、触发事件
func (s *RecordSuite) submit(alias, session string, values map[string][]string) {
	f := s.form(alias)
	f.SetSession(session)
	s.Require().NoError(f.Handle(context.Background(), values))
}

func (s *RecordSuite) records() []Record {
	var records []Record
	s.Require().NoError(s.db.Table(s.tables.Records).Order("form_id, session").Find(&records).Error)
	return records
}

func (s *RecordSuite) metas() []RecordMeta {
	var metas []RecordMeta
	s.Require().NoError(s.db.Table(s.tables.Meta).Order("meta_id").Find(&metas).Error)
	return metas
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}
