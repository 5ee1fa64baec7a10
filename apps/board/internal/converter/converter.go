package converter

import (
	"time"

	"CommunityBoard/apps/board/internal/dto"
	"CommunityBoard/model"
)

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// AttachmentToItem 附件模型转 DTO
func AttachmentToItem(a *model.Attachment) *dto.AttachmentItem {
	if a == nil {
		return nil
	}
	return &dto.AttachmentItem{
		Token:       a.UuidFileName,
		FileName:    a.FileName,
		Location:    a.Location,
		ContentType: a.ContentType,
		Size:        a.Size,
		IsTemporary: a.IsTemporary,
	}
}

// AttachmentsToItems 批量转换附件
func AttachmentsToItems(list []*model.Attachment) []*dto.AttachmentItem {
	items := make([]*dto.AttachmentItem, 0, len(list))
	for _, a := range list {
		if a == nil {
			continue
		}
		items = append(items, AttachmentToItem(a))
	}
	return items
}

// ArticleToResponse 帖子模型转 DTO
func ArticleToResponse(a *model.Article) *dto.ArticleResponse {
	if a == nil {
		return nil
	}
	return &dto.ArticleResponse{
		ID:          a.Id,
		Title:       a.Title,
		Content:     a.Content,
		AuthorUUID:  a.AuthorUuid,
		ViewCount:   a.ViewCount,
		LikeCount:   a.LikeCount,
		CreatedAt:   millis(a.CreatedAt),
		UpdatedAt:   millis(a.UpdatedAt),
		Attachments: AttachmentsToItems(a.Attachments),
	}
}

// ArticlesToList 帖子列表转 DTO
func ArticlesToList(list []*model.Article) *dto.ArticleListResponse {
	items := make([]*dto.ArticleResponse, 0, len(list))
	for _, a := range list {
		if a == nil {
			continue
		}
		items = append(items, ArticleToResponse(a))
	}
	return &dto.ArticleListResponse{Items: items}
}

// CommentToResponse 评论模型转 DTO
func CommentToResponse(c *model.Comment) *dto.CommentResponse {
	if c == nil {
		return nil
	}
	return &dto.CommentResponse{
		ID:         c.Id,
		ArticleID:  c.ArticleId,
		AuthorUUID: c.AuthorUuid,
		ParentID:   c.ParentId,
		Content:    c.Content,
		CreatedAt:  millis(c.CreatedAt),
	}
}

// NotificationToItem 通知模型转 DTO
func NotificationToItem(n *model.Notification) *dto.NotificationItem {
	if n == nil {
		return nil
	}
	return &dto.NotificationItem{
		ID:        n.Id,
		AlarmType: n.AlarmType,
		Message:   n.Message,
		TargetID:  n.TargetId,
		MakeID:    n.MakeId,
		IsRead:    n.IsRead,
		CreatedAt: millis(n.CreatedAt),
	}
}

// NotificationsToList 通知列表转 DTO，pagination 为 nil 时不分页
func NotificationsToList(list []*model.Notification, pagination *dto.PaginationInfo) *dto.NotificationListResponse {
	items := make([]*dto.NotificationItem, 0, len(list))
	for _, n := range list {
		if n == nil {
			continue
		}
		items = append(items, NotificationToItem(n))
	}
	return &dto.NotificationListResponse{Items: items, Pagination: pagination}
}

// FriendsToList 好友关系转 DTO。
// 关系只存一行（申请人在 user_uuid），这里按 actor 取对端。
func FriendsToList(actor string, list []*model.FriendRelation) *dto.FriendListResponse {
	items := make([]*dto.FriendItem, 0, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		other := r.FriendUuid
		if other == actor {
			other = r.UserUuid
		}
		items = append(items, &dto.FriendItem{
			FriendUUID: other,
			Since:      millis(r.UpdatedAt),
		})
	}
	return &dto.FriendListResponse{Items: items}
}
