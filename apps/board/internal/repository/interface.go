package repository

import (
	"context"
	"time"

	"CommunityBoard/model"
)

// ==================== 用户 Repository ====================

// IUserRepository 用户信息只读访问
type IUserRepository interface {
	// GetByUUID 根据 UUID 查询用户（带 Redis 缓存）
	GetByUUID(ctx context.Context, uuid string) (*model.UserInfo, error)

	// Create 创建用户（账号同步/测试数据）
	Create(ctx context.Context, user *model.UserInfo) error
}

// ==================== 帖子 Repository ====================

// IArticleRepository 帖子、评论、点赞数据访问接口
type IArticleRepository interface {
	// Create 创建帖子
	Create(ctx context.Context, article *model.Article) error

	// GetByID 查询帖子（不含附件）
	GetByID(ctx context.Context, id int64) (*model.Article, error)

	// GetWithAttachments 查询帖子及全部附件（含临时附件）
	GetWithAttachments(ctx context.Context, id int64) (*model.Article, error)

	// UpdateContent 更新标题、正文和显式声明的附件令牌
	UpdateContent(ctx context.Context, id int64, title, content string, referenced []string) error

	// Delete 删除帖子及其评论、点赞、附件记录
	Delete(ctx context.Context, id int64) error

	// ListByAuthor 作者的全部帖子，按创建时间倒序
	ListByAuthor(ctx context.Context, authorUUID string) ([]*model.Article, error)

	// IncrViewCount 浏览量 +1
	IncrViewCount(ctx context.Context, id int64) error

	// AddLike 点赞，已点过返回 false
	AddLike(ctx context.Context, articleID int64, userUUID string) (bool, error)

	// RemoveLike 取消点赞，未点过返回 false
	RemoveLike(ctx context.Context, articleID int64, userUUID string) (bool, error)

	// RefreshLikeCount 按点赞表重算点赞数并返回
	RefreshLikeCount(ctx context.Context, articleID int64) (int64, error)

	// CreateComment 创建评论
	CreateComment(ctx context.Context, comment *model.Comment) error

	// GetComment 查询评论
	GetComment(ctx context.Context, id int64) (*model.Comment, error)
}

// ==================== 附件 Repository ====================

// IAttachmentRepository 附件记录数据访问接口
type IAttachmentRepository interface {
	// BatchCreate 批量写入附件记录
	BatchCreate(ctx context.Context, attachments []*model.Attachment) error

	// ListByArticle 帖子的全部附件
	ListByArticle(ctx context.Context, articleID int64) ([]*model.Attachment, error)

	// ListTemporary 帖子的临时附件
	ListTemporary(ctx context.Context, articleID int64) ([]*model.Attachment, error)

	// DeleteByIDs 删除附件记录，返回删除行数
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// PromoteTemporary 把帖子的临时附件全部转正，返回转正数量
	PromoteTemporary(ctx context.Context, articleID int64) (int64, error)

	// ListStaleTemporary 创建时间早于 before 的临时附件
	ListStaleTemporary(ctx context.Context, before time.Time, limit int) ([]*model.Attachment, error)
}

// ==================== 通知 Repository ====================

// INotificationRepository 通知数据访问接口
type INotificationRepository interface {
	// Create 写入通知
	Create(ctx context.Context, n *model.Notification) error

	// GetByID 查询通知
	GetByID(ctx context.Context, id int64) (*model.Notification, error)

	// FindUnread 按 (接收人, 触发人, 类型) 查找一条未读通知，不存在返回 ErrRecordNotFound
	FindUnread(ctx context.Context, recipientUUID, makeID, alarmType string) (*model.Notification, error)

	// ListUnread 未读通知，按创建时间倒序
	ListUnread(ctx context.Context, recipientUUID string) ([]*model.Notification, error)

	// CountUnread 未读通知数（Redis 缓存）
	CountUnread(ctx context.Context, recipientUUID string) (int64, error)

	// ListByRecipient 分页查询全部通知
	ListByRecipient(ctx context.Context, recipientUUID string, page, pageSize int) ([]*model.Notification, int64, error)

	// MarkRead 条件更新 is_read=false -> true，已读返回 false
	MarkRead(ctx context.Context, id int64) (bool, error)

	// MarkAllRead 把接收人的未读标记为已读。FRIEND_REQUEST 只能经由同意/拒绝置为已读，这里跳过
	MarkAllRead(ctx context.Context, recipientUUID string) (int64, error)

	// Delete 删除通知
	Delete(ctx context.Context, id int64) error

	// InvalidateUnreadCount 删除未读数缓存
	InvalidateUnreadCount(ctx context.Context, recipientUUID string)

	// AcquireDedupLock 获取 (接收人, 触发人, 类型) 维度的短锁。
	// Redis 不可用时返回 acquired=true，退化为仅依赖数据库查询去重。
	AcquireDedupLock(ctx context.Context, recipientUUID, makeID, alarmType string) (acquired bool, release func())
}

// ==================== 好友关系 Repository ====================

// IFriendRepository 好友关系数据访问接口
type IFriendRepository interface {
	// CreatePending 创建待确认关系
	CreatePending(ctx context.Context, rel *model.FriendRelation) error

	// GetBetween 查询两人之间的关系（不区分方向）
	GetBetween(ctx context.Context, a, b string) (*model.FriendRelation, error)

	// AcceptPending 条件更新 PENDING -> ACCEPTED，未命中返回 false
	AcceptPending(ctx context.Context, requesterUUID, recipientUUID string) (bool, error)

	// DeletePending 删除待确认关系，未命中返回 false
	DeletePending(ctx context.Context, requesterUUID, recipientUUID string) (bool, error)

	// DeleteAccepted 解除好友关系（不区分方向）
	DeleteAccepted(ctx context.Context, a, b string) (bool, error)

	// ListFriends 已确认的好友关系
	ListFriends(ctx context.Context, userUUID string) ([]*model.FriendRelation, error)
}
