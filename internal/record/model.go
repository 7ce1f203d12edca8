package record

import "time"

// 默认表名，与已有部署保持一致
const (
	RecordsTable    = "tify_forms_record"
	RecordMetaTable = "tify_forms_recordmeta"
)

// StatusPublish 是新记录的状态
const StatusPublish = "publish"

// ZeroDate 是 created_date 的数据库默认值，表示“未知时间”
const ZeroDate = "0001-01-01 00:00:00"

// Record 定义了一次表单提交在数据库中的记录。
// 记录只会被创建一次，本模块从不更新或删除它。
type Record struct {
	ID uint64 `gorm:"column:ID;primaryKey;autoIncrement" json:"id"`

	// FormID 是提交所属表单的 alias
	FormID string `gorm:"column:form_id;size:255;not null" json:"form_id"`

	// Session 是提交时的表单会话令牌
	Session string `gorm:"column:session;size:255;not null" json:"session"`

	Status      string    `gorm:"column:status;size:32;not null;default:publish" json:"status"`
	CreatedDate time.Time `gorm:"column:created_date;not null;default:'0001-01-01 00:00:00'" json:"created_date"`
}

// RecordMeta 保存记录的一个字段值。
// 同一记录可以有多条相同 meta_key 的行，写入总是追加。
type RecordMeta struct {
	MetaID uint64 `gorm:"column:meta_id;primaryKey;autoIncrement" json:"meta_id"`

	// RecordID 指向所属记录，数据库层面没有外键约束
	RecordID uint64 `gorm:"column:tify_forms_record_id;not null;default:0" json:"record_id"`

	MetaKey   *string `gorm:"column:meta_key;size:255" json:"meta_key"`
	MetaValue *string `gorm:"column:meta_value;type:text" json:"meta_value"`
}

// Tables 是当前站点实际使用的表名
type Tables struct {
	Prefix  string
	Records string
	Meta    string
}

// NewTables 在默认表名前加上站点前缀
func NewTables(prefix string) Tables {
	return Tables{
		Prefix:  prefix,
		Records: prefix + RecordsTable,
		Meta:    prefix + RecordMetaTable,
	}
}
