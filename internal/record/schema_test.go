package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (s *RecordSuite) TestSchemaCreatesTablesAndColumns() {
	m := s.db.Migrator()
	s.True(m.HasTable(RecordsTable))
	s.True(m.HasTable(RecordMetaTable))

	for _, col := range []string{"ID", "form_id", "session", "status", "created_date"} {
		s.True(m.HasColumn(RecordsTable, col), col)
	}
	for _, col := range []string{"meta_id", "tify_forms_record_id", "meta_key", "meta_value"} {
		s.True(m.HasColumn(RecordMetaTable, col), col)
	}

	s.True(m.HasIndex(RecordsTable, "form_id"))
	s.True(m.HasIndex(RecordMetaTable, "tify_forms_record_id"))
	s.True(m.HasIndex(RecordMetaTable, "meta_key"))
}

func (s *RecordSuite) TestSchemaEnsureIsIdempotent() {
	s.submit("contact", "s1", map[string][]string{"email": {"a@b.com"}})
	recordsBefore, metasBefore := len(s.records()), len(s.metas())
	s.Require().NotZero(recordsBefore)

	schema := NewSchema(s.db, s.tables, zap.NewNop())
	s.Require().NoError(schema.Ensure(context.Background()))
	s.Require().NoError(schema.Ensure(context.Background()))

	s.Len(s.records(), recordsBefore)
	s.Len(s.metas(), metasBefore)
}

func (s *RecordSuite) TestSchemaDefaults() {
	// 只写入必填列，其余列使用数据库默认值
	s.Require().NoError(s.db.Exec(
		"INSERT INTO tify_forms_record (form_id, session) VALUES (?, ?)", "contact", "raw").Error)

	var rec Record
	s.Require().NoError(s.db.Table(RecordsTable).Where("session = ?", "raw").Take(&rec).Error)
	s.Equal(StatusPublish, rec.Status)
	s.Equal(1, rec.CreatedDate.Year())

	s.Require().NoError(s.db.Exec("INSERT INTO tify_forms_recordmeta (meta_key) VALUES (NULL)").Error)
	var meta RecordMeta
	s.Require().NoError(s.db.Table(RecordMetaTable).Take(&meta).Error)
	s.Equal(uint64(0), meta.RecordID)
	s.Nil(meta.MetaKey)
	s.Nil(meta.MetaValue)
}

func TestSchemaWithTablePrefix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewSchema(db, NewTables(""), zap.NewNop()).Ensure(ctx))
	site2 := NewTables("wp_2_")
	require.NoError(t, NewSchema(db, site2, zap.NewNop()).Ensure(ctx))

	assert.Equal(t, "wp_2_tify_forms_record", site2.Records)
	assert.True(t, db.Migrator().HasTable("wp_2_tify_forms_record"))
	assert.True(t, db.Migrator().HasTable("wp_2_tify_forms_recordmeta"))
	assert.True(t, db.Migrator().HasIndex(site2.Records, "wp_2_form_id"))

	repo := NewRepository(db, site2)
	id, err := repo.InsertGetID(ctx, &Record{FormID: "contact", Session: "s", Status: StatusPublish})
	require.NoError(t, err)
	assert.NotZero(t, id)

	var count int64
	require.NoError(t, db.Table(RecordsTable).Count(&count).Error)
	assert.Zero(t, count)
}
