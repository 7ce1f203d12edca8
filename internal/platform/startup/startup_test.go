package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/SlpAus/form-record-backend/internal/admin"
	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/SlpAus/form-record-backend/internal/platform/health"
	"github.com/SlpAus/form-record-backend/internal/record"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testForms = `
forms:
  - alias: contact
    labels:
      plural: demandes
    addons:
      record: {}
    fields:
      - slug: email
  - alias: newsletter
    addons:
      record: {}
    fields:
      - slug: email
  - alias: plain
    fields:
      - slug: x
`

type stubAddon struct {
	err    error
	builds int
	booted []string
}

func (a *stubAddon) Name() string                        { return "record" }
func (a *stubAddon) DefaultFieldOptions() map[string]any { return nil }

func (a *stubAddon) Build(ctx context.Context) error {
	a.builds++
	return a.err
}

func (a *stubAddon) Boot(f *form.Form) error {
	a.booted = append(a.booted, f.Alias())
	return nil
}

func newRegistry(t *testing.T, addon form.Addon) *form.Registry {
	t.Helper()
	defs, err := form.ParseDefinitions([]byte(testForms))
	require.NoError(t, err)
	registry, err := form.NewRegistry(defs, addon)
	require.NoError(t, err)
	return registry
}

func TestInitializeApplication(t *testing.T) {
	addon := &stubAddon{}
	registry := newRegistry(t, addon)

	require.NoError(t, InitializeApplication(context.Background(), registry, zap.NewNop()))
	assert.True(t, registry.IsBuilt())
	assert.Equal(t, 1, addon.builds)
	// 只启动启用了插件的表单
	assert.Equal(t, []string{"contact", "newsletter"}, addon.booted)
}

func TestInitializeApplicationFailure(t *testing.T) {
	boom := errors.New("无法创建表")
	addon := &stubAddon{err: boom}
	registry := newRegistry(t, addon)

	err := InitializeApplication(context.Background(), registry, zap.NewNop())
	require.ErrorIs(t, err, boom)
	assert.False(t, registry.IsBuilt())
	assert.Empty(t, addon.booted)
}

func TestInitializeApplicationRegistersAdminMenu(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:startup_menu?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tables := record.NewTables("")
	menu := admin.NewMenu()
	addon := record.NewAddon(
		record.NewSchema(db, tables, zap.NewNop()),
		record.NewService(record.NewRepository(db, tables), zap.NewNop()),
		menu,
		zap.NewNop(),
	)
	registry := newRegistry(t, addon)

	require.NoError(t, InitializeApplication(context.Background(), registry, zap.NewNop()))

	// 不需要任何请求，子菜单在启动后就已存在
	tree := menu.Tree()
	require.Len(t, tree, 1)
	assert.Equal(t, record.MenuSlug, tree[0].Slug)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, record.ListTableSlug("contact"), tree[0].Children[0].Slug)
	assert.Equal(t, "demandes", tree[0].Children[0].Label)
	assert.Equal(t, record.ListTableSlug("newsletter"), tree[0].Children[1].Slug)

	_, ok := addon.ListTable("newsletter")
	assert.True(t, ok)
}

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetErr(errors.New("connection refused"))
	return cmd
}

func TestCheckDependenciesMarksDegraded(t *testing.T) {
	status := health.NewStatus(zap.NewNop())
	checker := health.NewChecker(downPinger{}, status, zap.NewNop())

	CheckDependencies(context.Background(), checker, status, zap.NewNop())
	assert.Equal(t, health.StateDegraded, status.State())
}
