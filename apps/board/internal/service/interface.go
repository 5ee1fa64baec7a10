package service

import (
	"context"

	"CommunityBoard/model"
)

// IArticleService 帖子与附件编辑
type IArticleService interface {
	Create(ctx context.Context, actor, title, content string, files []*FileInput) (*model.Article, error)
	Get(ctx context.Context, id int64) (*model.Article, error)
	Update(ctx context.Context, actor string, id int64, in *UpdateArticleInput) (*model.Article, error)
	UploadAttachments(ctx context.Context, actor string, id int64, files []*FileInput) ([]*model.Attachment, error)
	FinalizeEdit(ctx context.Context, actor string, id int64) (int64, int, error)
	CancelEdit(ctx context.Context, actor string, id int64) (int, error)
	Delete(ctx context.Context, actor string, id int64) error
	ListByAuthor(ctx context.Context, author string) ([]*model.Article, error)
}

// INotificationService 通知查询与已读
type INotificationService interface {
	Dispatch(ctx context.Context, kind string, targetID int64, actor string) (*model.Notification, error)
	GetUnread(ctx context.Context, actor string) ([]*model.Notification, error)
	GetUnreadCount(ctx context.Context, actor string) (int64, error)
	List(ctx context.Context, actor string, page, pageSize int) ([]*model.Notification, int64, error)
	MarkAsRead(ctx context.Context, actor string, id int64) error
	MarkAllAsRead(ctx context.Context, actor string) (int64, error)
	Delete(ctx context.Context, actor string, id int64) error
}

// IFriendService 好友申请协议
type IFriendService interface {
	SendFriendRequest(ctx context.Context, actor, target string) (*model.Notification, error)
	AcceptFriendRequest(ctx context.Context, actor string, notificationID int64) error
	RejectFriendRequest(ctx context.Context, actor string, notificationID int64) error
	ListFriends(ctx context.Context, actor string) ([]*model.FriendRelation, error)
	DeleteFriend(ctx context.Context, actor, friend string) error
}

// ICommentService 评论
type ICommentService interface {
	Add(ctx context.Context, actor string, articleID int64, content string, parentID int64) (*model.Comment, error)
}

// ILikeService 点赞
type ILikeService interface {
	Toggle(ctx context.Context, actor string, articleID int64) (*LikeResult, error)
}

var (
	_ IArticleService      = (*ArticleService)(nil)
	_ INotificationService = (*NotificationService)(nil)
	_ IFriendService       = (*FriendService)(nil)
	_ ICommentService      = (*CommentService)(nil)
	_ ILikeService         = (*LikeService)(nil)
)
