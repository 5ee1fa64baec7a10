package model

import "time"

// Article 帖子
type Article struct {
	Id         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title      string    `gorm:"column:title;type:varchar(200);not null"`
	Content    string    `gorm:"column:content;type:text;not null"`
	AuthorUuid string    `gorm:"column:author_uuid;type:varchar(36);not null;index;comment:作者uuid"`
	ViewCount  int64     `gorm:"column:view_count;not null;default:0"`
	LikeCount  int64     `gorm:"column:like_count;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// ReferencedTokens 最近一次编辑显式声明的附件令牌，和正文中的令牌一起构成引用集合
	ReferencedTokens []string `gorm:"column:referenced_tokens;type:text;serializer:json"`

	Attachments []*Attachment `gorm:"foreignKey:ArticleId"`
}

func (Article) TableName() string { return "article" }

// Comment 评论。ParentId=0 表示一级评论
type Comment struct {
	Id         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ArticleId  int64     `gorm:"column:article_id;not null;index"`
	AuthorUuid string    `gorm:"column:author_uuid;type:varchar(36);not null"`
	ParentId   int64     `gorm:"column:parent_id;not null;default:0;index"`
	Content    string    `gorm:"column:content;type:varchar(1000);not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Comment) TableName() string { return "article_comment" }

// ArticleLike 点赞记录，同一用户对同一帖子最多一条
type ArticleLike struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ArticleId int64     `gorm:"column:article_id;not null;uniqueIndex:uidx_article_user"`
	UserUuid  string    `gorm:"column:user_uuid;type:varchar(36);not null;uniqueIndex:uidx_article_user"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ArticleLike) TableName() string { return "article_like" }
