package model

import "time"

// Attachment 帖子附件。
// UuidFileName 是正文中 uuidFileName=<token> 引用的令牌；
// IsTemporary=true 表示处于编辑会话中、尚未被确认的附件。
type Attachment struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UuidFileName string    `gorm:"column:uuid_file_name;type:varchar(64);not null;uniqueIndex;comment:引用令牌"`
	FileName     string    `gorm:"column:file_name;type:varchar(255);not null;comment:原始文件名"`
	Location     string    `gorm:"column:location;type:varchar(512);not null;comment:对象存储路径"`
	ContentType  string    `gorm:"column:content_type;type:varchar(128)"`
	Size         int64     `gorm:"column:size;not null;default:0"`
	IsTemporary  bool      `gorm:"column:is_temporary;not null;default:false;index:idx_temp_created,priority:1"`
	ArticleId    int64     `gorm:"column:article_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;index:idx_temp_created,priority:2"`
}

func (Attachment) TableName() string { return "attachment" }
