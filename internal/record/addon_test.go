package record

import (
	"context"

	"github.com/SlpAus/form-record-backend/internal/admin"
)

func (s *RecordSuite) TestBuildRegistersTopLevelMenu() {
	entries := s.menu.Entries()
	s.Require().NotEmpty(entries)
	s.Equal(admin.Entry{Slug: MenuSlug, Label: MenuLabel, Icon: MenuIcon}, entries[0])
}

func (s *RecordSuite) TestBootRegistersSubmenuPerForm() {
	s.form("contact")
	s.form("newsletter")
	s.form("plain")

	tree := s.menu.Tree()
	s.Require().Len(tree, 1)
	s.Equal(MenuSlug, tree[0].Slug)

	slugs := make([]string, 0, len(tree[0].Children))
	for _, child := range tree[0].Children {
		slugs = append(slugs, child.Slug)
		s.Equal(MenuSlug, child.Parent)
	}
	s.ElementsMatch([]string{ListTableSlug("contact"), ListTableSlug("newsletter")}, slugs)
}

func (s *RecordSuite) TestBootIsRepeatableAcrossRequests() {
	s.form("contact")
	s.form("contact")

	tree := s.menu.Tree()
	s.Require().Len(tree, 1)
	s.Len(tree[0].Children, 1)
	s.Equal("demandes", tree[0].Children[0].Label)
}

func (s *RecordSuite) TestDefaultFieldOptions() {
	s.Equal(map[string]any{"column": true, "preview": true, "save": true}, s.addon.DefaultFieldOptions())
	s.Equal(AddonName, s.addon.Name())

	f := s.form("newsletter")
	field, ok := f.Field("email")
	s.Require().True(ok)
	s.Equal(true, field.AddonOption(OptionSave))
	s.Equal(true, field.AddonOption(OptionPreview))
}

func (s *RecordSuite) TestRegistryBuildsOnce() {
	s.True(s.registry.IsBuilt())
	// 再次 Build 不会重复执行插件的初始化
	s.Require().NoError(s.registry.Build(context.Background()))
	s.Len(s.menu.Entries(), 1)
}
