package service

import (
	"context"
	"errors"
	"fmt"

	"CommunityBoard/apps/board/internal/event"
	"CommunityBoard/apps/board/internal/metrics"
	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/apps/board/mq"
	"CommunityBoard/consts"
	"CommunityBoard/model"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/util"
)

// NotificationService 通知的创建、去重、已读与删除
type NotificationService struct {
	notifyRepo  repository.INotificationRepository
	articleRepo repository.IArticleRepository
	userRepo    repository.IUserRepository
	publisher   event.Publisher
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notifyRepo repository.INotificationRepository,
	articleRepo repository.IArticleRepository,
	userRepo repository.IUserRepository,
	publisher event.Publisher,
) *NotificationService {
	if publisher == nil {
		publisher = event.Nop
	}
	return &NotificationService{
		notifyRepo:  notifyRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Dispatch 为点赞/评论/回复生成通知。
//   - 接收人即操作人时不生成通知，返回 (nil, nil)
//   - LIKE 在 (接收人, 操作人, 类型) 上存在未读通知时不重复生成，返回 (nil, nil)
//   - 先落库再投递事件；投递失败时通知保留，同时返回 ErrDispatchFailed
func (s *NotificationService) Dispatch(ctx context.Context, kind string, targetID int64, actor string) (*model.Notification, error) {
	recipient, subject, err := s.resolveRecipient(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if recipient == actor {
		metrics.RecordNotification(kind, "suppressed")
		return nil, nil
	}

	if kind == model.AlarmTypeLike {
		acquired, release := s.notifyRepo.AcquireDedupLock(ctx, recipient, actor, kind)
		if !acquired {
			// 同一 key 的并发请求正在写入
			metrics.RecordNotification(kind, "deduplicated")
			return nil, nil
		}
		defer release()

		_, err := s.notifyRepo.FindUnread(ctx, recipient, actor, kind)
		if err == nil {
			metrics.RecordNotification(kind, "deduplicated")
			return nil, nil
		}
		if !errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrInternal(err)
		}
	}

	n := &model.Notification{
		AlarmType:     kind,
		Message:       s.buildMessage(ctx, kind, actor, subject),
		RecipientUuid: recipient,
		TargetId:      targetID,
		MakeId:        actor,
	}
	if err := s.create(ctx, n); err != nil {
		return nil, err
	}
	metrics.RecordNotification(kind, "created")

	if err := s.publish(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// resolveRecipient 按类型找到接收人和用于拼接消息的主题
func (s *NotificationService) resolveRecipient(ctx context.Context, kind string, targetID int64) (string, string, error) {
	switch kind {
	case model.AlarmTypeLike, model.AlarmTypeComment:
		article, err := s.articleRepo.GetByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return "", "", ErrNotFound(consts.CodeArticleNotFound, err)
			}
			return "", "", ErrInternal(err)
		}
		return article.AuthorUuid, article.Title, nil
	case model.AlarmTypeRecomment:
		comment, err := s.articleRepo.GetComment(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return "", "", ErrNotFound(consts.CodeCommentNotFound, err)
			}
			return "", "", ErrInternal(err)
		}
		return comment.AuthorUuid, "", nil
	default:
		return "", "", ErrInvalidState(consts.CodeParamError, fmt.Errorf("unsupported alarm type %q", kind))
	}
}

func (s *NotificationService) buildMessage(ctx context.Context, kind, actor, subject string) string {
	name := s.displayName(ctx, actor)
	switch kind {
	case model.AlarmTypeLike:
		return fmt.Sprintf("%s 赞了你的帖子《%s》", name, subject)
	case model.AlarmTypeComment:
		return fmt.Sprintf("%s 评论了你的帖子《%s》", name, subject)
	case model.AlarmTypeRecomment:
		return fmt.Sprintf("%s 回复了你的评论", name)
	case model.AlarmTypeFriendRequest:
		return fmt.Sprintf("%s 请求添加你为好友", name)
	}
	return name
}

// displayName 操作人昵称，查不到时退化为 UUID
func (s *NotificationService) displayName(ctx context.Context, uuid string) string {
	if s.userRepo == nil {
		return uuid
	}
	user, err := s.userRepo.GetByUUID(ctx, uuid)
	if err != nil || user == nil || user.Nickname == "" {
		return uuid
	}
	return user.Nickname
}

// create 落库，补充接收人的 user_id
func (s *NotificationService) create(ctx context.Context, n *model.Notification) error {
	if s.userRepo != nil {
		if user, err := s.userRepo.GetByUUID(ctx, n.RecipientUuid); err == nil && user != nil {
			n.UserId = user.Id
		}
	}
	if err := s.notifyRepo.Create(ctx, n); err != nil {
		return ErrInternal(err)
	}
	return nil
}

// publish 投递通知事件
func (s *NotificationService) publish(ctx context.Context, n *model.Notification) error {
	evt := mq.NotificationEvent{
		EventID:        util.NextID(),
		AlarmType:      n.AlarmType,
		Recipient:      n.RecipientUuid,
		Message:        n.Message,
		TargetID:       n.TargetId,
		MakeID:         n.MakeId,
		NotificationID: n.Id,
		CreatedAt:      n.CreatedAt,
		TraceID:        ctxmeta.TraceID(ctx),
	}
	if s.userRepo != nil {
		if user, err := s.userRepo.GetByUUID(ctx, n.RecipientUuid); err == nil && user != nil {
			evt.RecipientEmail = user.Email
		}
	}

	if err := s.publisher.Publish(ctx, evt); err != nil {
		metrics.RecordNotification(n.AlarmType, "publish_failed")
		logger.Error(ctx, "通知事件投递失败",
			logger.Int64("notification_id", n.Id),
			logger.String("alarm_type", n.AlarmType),
			logger.String("recipient", n.RecipientUuid),
			logger.ErrorField("error", err),
		)
		return ErrDispatchFailed(err)
	}
	return nil
}

// GetUnread 未读通知，按创建时间倒序
func (s *NotificationService) GetUnread(ctx context.Context, actor string) ([]*model.Notification, error) {
	list, err := s.notifyRepo.ListUnread(ctx, actor)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return list, nil
}

// GetUnreadCount 未读通知数
func (s *NotificationService) GetUnreadCount(ctx context.Context, actor string) (int64, error) {
	count, err := s.notifyRepo.CountUnread(ctx, actor)
	if err != nil {
		return 0, ErrInternal(err)
	}
	return count, nil
}

// List 分页查询全部通知
func (s *NotificationService) List(ctx context.Context, actor string, page, pageSize int) ([]*model.Notification, int64, error) {
	list, total, err := s.notifyRepo.ListByRecipient(ctx, actor, page, pageSize)
	if err != nil {
		return nil, 0, ErrInternal(err)
	}
	return list, total, nil
}

// MarkAsRead 标记已读，已读的通知重复标记不报错。
// 未处理的好友申请只能通过同意或拒绝置为已读。
func (s *NotificationService) MarkAsRead(ctx context.Context, actor string, id int64) error {
	n, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if isPendingFriendRequest(n) {
		return ErrInvalidState(consts.CodeFriendRequestPending, nil)
	}
	if _, err := s.notifyRepo.MarkRead(ctx, id); err != nil {
		return ErrInternal(err)
	}
	return nil
}

// MarkAllAsRead 全部标记已读，返回本次标记的数量。未处理的好友申请保持未读。
func (s *NotificationService) MarkAllAsRead(ctx context.Context, actor string) (int64, error) {
	n, err := s.notifyRepo.MarkAllRead(ctx, actor)
	if err != nil {
		return 0, ErrInternal(err)
	}
	return n, nil
}

// Delete 删除通知，仅接收人可删。未处理的好友申请不能删除。
func (s *NotificationService) Delete(ctx context.Context, actor string, id int64) error {
	n, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if isPendingFriendRequest(n) {
		return ErrInvalidState(consts.CodeFriendRequestPending, nil)
	}
	if err := s.notifyRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrNotFound(consts.CodeNotificationNotFound, err)
		}
		return ErrInternal(err)
	}
	return nil
}

func isPendingFriendRequest(n *model.Notification) bool {
	return n.AlarmType == model.AlarmTypeFriendRequest && !n.IsRead
}

// loadOwned 查询通知并校验接收人
func (s *NotificationService) loadOwned(ctx context.Context, actor string, id int64) (*model.Notification, error) {
	n, err := s.notifyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound(consts.CodeNotificationNotFound, err)
		}
		return nil, ErrInternal(err)
	}
	if n.RecipientUuid != actor {
		return nil, ErrUnauthorized(consts.CodeNotificationNotOwner, nil)
	}
	return n, nil
}
