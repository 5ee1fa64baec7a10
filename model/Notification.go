package model

import "time"

// 通知类型
const (
	AlarmTypeLike          = "LIKE"
	AlarmTypeComment       = "COMMENT"
	AlarmTypeRecomment     = "RECOMMENT"
	AlarmTypeFriendRequest = "FRIEND_REQUEST"
)

// Notification 通知记录。
// RecipientUuid 为接收人，MakeId 为触发人，TargetId 随类型变化：
// LIKE/COMMENT 指向帖子，RECOMMENT 指向父评论，FRIEND_REQUEST 指向好友关系。
type Notification struct {
	Id            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AlarmType     string    `gorm:"column:alarm_type;type:varchar(20);not null;index:idx_dedup,priority:3"`
	Message       string    `gorm:"column:message;type:varchar(255);not null"`
	RecipientUuid string    `gorm:"column:recipient_uuid;type:varchar(36);not null;index:idx_recipient_read,priority:1;index:idx_dedup,priority:1"`
	UserId        int64     `gorm:"column:user_id;not null;default:0;comment:接收人用户id"`
	TargetId      int64     `gorm:"column:target_id;not null;default:0"`
	MakeId        string    `gorm:"column:make_id;type:varchar(36);not null;index:idx_dedup,priority:2;comment:触发人uuid"`
	IsRead        bool      `gorm:"column:is_read;not null;default:false;index:idx_recipient_read,priority:2"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index:idx_recipient_read,priority:3"`
}

func (Notification) TableName() string { return "notification" }
