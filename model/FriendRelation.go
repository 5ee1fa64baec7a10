package model

import "time"

// 好友关系状态。被拒绝的申请直接删除记录，不保留 REJECTED 状态。
const (
	FriendStatusPending  = "PENDING"
	FriendStatusAccepted = "ACCEPTED"
)

// FriendRelation 好友关系，一对用户只保留一条记录。
// UserUuid 为申请人，FriendUuid 为被申请人。
type FriendRelation struct {
	Id         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserUuid   string    `gorm:"column:user_uuid;type:varchar(36);not null;uniqueIndex:uidx_user_friend"`
	FriendUuid string    `gorm:"column:friend_uuid;type:varchar(36);not null;uniqueIndex:uidx_user_friend;index"`
	Status     string    `gorm:"column:status;type:varchar(16);not null;default:'PENDING'"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (FriendRelation) TableName() string { return "friend_relation" }
