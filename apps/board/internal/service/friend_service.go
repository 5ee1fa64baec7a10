package service

import (
	"context"
	"errors"

	"CommunityBoard/apps/board/internal/metrics"
	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/consts"
	"CommunityBoard/model"
	"CommunityBoard/pkg/logger"
)

// FriendService 好友申请协议：申请、同意、拒绝都经由 FRIEND_REQUEST 通知驱动。
// 关系状态变化与通知置为已读总在同一事务中完成。
type FriendService struct {
	tx            repository.ITransactor
	friendRepo    repository.IFriendRepository
	notifyRepo    repository.INotificationRepository
	userRepo      repository.IUserRepository
	notifications *NotificationService
}

// NewFriendService 创建好友服务
func NewFriendService(
	tx repository.ITransactor,
	friendRepo repository.IFriendRepository,
	notifyRepo repository.INotificationRepository,
	userRepo repository.IUserRepository,
	notifications *NotificationService,
) *FriendService {
	return &FriendService{
		tx:            tx,
		friendRepo:    friendRepo,
		notifyRepo:    notifyRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// SendFriendRequest 发起好友申请：创建 PENDING 关系和一条指向该关系的 FRIEND_REQUEST 通知
func (s *FriendService) SendFriendRequest(ctx context.Context, actor, target string) (*model.Notification, error) {
	if actor == target {
		return nil, ErrInvalidState(consts.CodeFriendRequestSelf, nil)
	}
	if _, err := s.userRepo.GetByUUID(ctx, target); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound(consts.CodeUserNotFound, err)
		}
		return nil, ErrInternal(err)
	}

	existing, err := s.friendRepo.GetBetween(ctx, actor, target)
	switch {
	case err == nil && existing.Status == model.FriendStatusAccepted:
		return nil, ErrInvalidState(consts.CodeAlreadyFriend, nil)
	case err == nil:
		return nil, ErrInvalidState(consts.CodeFriendRequestSent, nil)
	case !errors.Is(err, repository.ErrRecordNotFound):
		return nil, ErrInternal(err)
	}

	n := &model.Notification{
		AlarmType:     model.AlarmTypeFriendRequest,
		Message:       s.notifications.buildMessage(ctx, model.AlarmTypeFriendRequest, actor, ""),
		RecipientUuid: target,
		MakeId:        actor,
	}
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		rel := &model.FriendRelation{UserUuid: actor, FriendUuid: target}
		if err := s.friendRepo.CreatePending(ctx, rel); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrInvalidState(consts.CodeFriendRequestSent, err)
			}
			return ErrInternal(err)
		}
		n.TargetId = rel.Id
		return s.notifications.create(ctx, n)
	})
	if err != nil {
		return nil, err
	}
	s.notifyRepo.InvalidateUnreadCount(ctx, target)
	metrics.RecordNotification(n.AlarmType, "created")

	if err := s.notifications.publish(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// AcceptFriendRequest 同意好友申请
func (s *FriendService) AcceptFriendRequest(ctx context.Context, actor string, notificationID int64) error {
	return s.respond(ctx, actor, notificationID, true)
}

// RejectFriendRequest 拒绝好友申请，关系记录直接删除
func (s *FriendService) RejectFriendRequest(ctx context.Context, actor string, notificationID int64) error {
	return s.respond(ctx, actor, notificationID, false)
}

func (s *FriendService) respond(ctx context.Context, actor string, notificationID int64, accept bool) error {
	n, err := s.notifyRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrNotFound(consts.CodeNotificationNotFound, err)
		}
		return ErrInternal(err)
	}
	if n.RecipientUuid != actor {
		return ErrUnauthorized(consts.CodeNotificationNotOwner, nil)
	}
	if n.AlarmType != model.AlarmTypeFriendRequest {
		return ErrInvalidState(consts.CodeNotificationState, nil)
	}
	if n.IsRead {
		return ErrInvalidState(consts.CodeFriendRequestHandled, nil)
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		// 条件更新保证并发的同意/拒绝只有一个生效
		marked, err := s.notifyRepo.MarkRead(ctx, n.Id)
		if err != nil {
			return ErrInternal(err)
		}
		if !marked {
			return ErrInvalidState(consts.CodeFriendRequestHandled, nil)
		}

		var changed bool
		if accept {
			changed, err = s.friendRepo.AcceptPending(ctx, n.MakeId, n.RecipientUuid)
		} else {
			changed, err = s.friendRepo.DeletePending(ctx, n.MakeId, n.RecipientUuid)
		}
		if err != nil {
			return ErrInternal(err)
		}
		if !changed {
			return ErrNotFound(consts.CodeFriendRelationMissing, nil)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifyRepo.InvalidateUnreadCount(ctx, n.RecipientUuid)

	logger.Info(ctx, "好友申请已处理",
		logger.Int64("notification_id", n.Id),
		logger.String("requester", n.MakeId),
		logger.Bool("accepted", accept),
	)
	return nil
}

// ListFriends 好友关系列表
func (s *FriendService) ListFriends(ctx context.Context, actor string) ([]*model.FriendRelation, error) {
	list, err := s.friendRepo.ListFriends(ctx, actor)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return list, nil
}

// DeleteFriend 解除好友关系
func (s *FriendService) DeleteFriend(ctx context.Context, actor, friend string) error {
	ok, err := s.friendRepo.DeleteAccepted(ctx, actor, friend)
	if err != nil {
		return ErrInternal(err)
	}
	if !ok {
		return ErrNotFound(consts.CodeNotFriend, nil)
	}
	return nil
}
