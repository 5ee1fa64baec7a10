package model

import "time"

// UserInfo 用户基础信息（账号体系由认证服务维护，board 只读取）
type UserInfo struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid      string    `gorm:"column:uuid;type:varchar(36);not null;uniqueIndex;comment:用户uuid"`
	Nickname  string    `gorm:"column:nickname;type:varchar(64);not null;comment:昵称"`
	Email     string    `gorm:"column:email;type:varchar(128);index;comment:邮箱"`
	Avatar    string    `gorm:"column:avatar;type:varchar(255);comment:头像"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserInfo) TableName() string { return "user_info" }
