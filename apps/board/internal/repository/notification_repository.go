package repository

import (
	"context"
	"errors"
	"strconv"

	rediskey "CommunityBoard/consts/redisKey"
	"CommunityBoard/model"
	pkgredis "CommunityBoard/pkg/redis"
	"CommunityBoard/pkg/util"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// notificationRepositoryImpl 通知数据访问层实现
type notificationRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewNotificationRepository 创建通知仓储实例
func NewNotificationRepository(db *gorm.DB, redisClient *redis.Client) INotificationRepository {
	return &notificationRepositoryImpl{db: db, redisClient: redisClient}
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, n *model.Notification) error {
	if err := conn(ctx, r.db).Create(n).Error; err != nil {
		return WrapDBError(err)
	}
	r.InvalidateUnreadCount(ctx, n.RecipientUuid)
	return nil
}

func (r *notificationRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	var n model.Notification
	if err := conn(ctx, r.db).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &n, nil
}

func (r *notificationRepositoryImpl) FindUnread(ctx context.Context, recipientUUID, makeID, alarmType string) (*model.Notification, error) {
	var n model.Notification
	err := conn(ctx, r.db).
		Where("recipient_uuid = ? AND make_id = ? AND alarm_type = ? AND is_read = ?", recipientUUID, makeID, alarmType, false).
		Order("id DESC").
		First(&n).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &n, nil
}

func (r *notificationRepositoryImpl) ListUnread(ctx context.Context, recipientUUID string) ([]*model.Notification, error) {
	var list []*model.Notification
	err := conn(ctx, r.db).
		Where("recipient_uuid = ? AND is_read = ?", recipientUUID, false).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

// CountUnread 未读数，优先读缓存。事务内直接查库，避免读到其他事务的缓存。
func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, recipientUUID string) (int64, error) {
	cacheKey := rediskey.NotifyUnreadCountKey(recipientUUID)
	useCache := r.redisClient != nil && !inTransaction(ctx)

	if useCache {
		cached, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if count, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			LogRedisError(ctx, err)
		}
	}

	var count int64
	err := conn(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_uuid = ? AND is_read = ?", recipientUUID, false).
		Count(&count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}

	if useCache {
		ttl := getRandomExpireTime(rediskey.NotifyUnreadCountTTL)
		if err := r.redisClient.Set(ctx, cacheKey, count, ttl).Err(); err != nil {
			LogRedisError(ctx, err)
		}
	}
	return count, nil
}

func (r *notificationRepositoryImpl) ListByRecipient(ctx context.Context, recipientUUID string, page, pageSize int) ([]*model.Notification, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	db := conn(ctx, r.db).Model(&model.Notification{}).Where("recipient_uuid = ?", recipientUUID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, WrapDBError(err)
	}

	var list []*model.Notification
	err := conn(ctx, r.db).
		Where("recipient_uuid = ?", recipientUUID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error
	if err != nil {
		return nil, 0, WrapDBError(err)
	}
	return list, total, nil
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, id int64) (bool, error) {
	var n model.Notification
	if err := conn(ctx, r.db).Select("id", "recipient_uuid").Where("id = ?", id).First(&n).Error; err != nil {
		return false, WrapDBError(err)
	}
	result := conn(ctx, r.db).Model(&model.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true)
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.InvalidateUnreadCount(ctx, n.RecipientUuid)
	return true, nil
}

func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, recipientUUID string) (int64, error) {
	result := conn(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_uuid = ? AND is_read = ? AND alarm_type <> ?", recipientUUID, false, model.AlarmTypeFriendRequest).
		Update("is_read", true)
	if result.Error != nil {
		return 0, WrapDBError(result.Error)
	}
	r.InvalidateUnreadCount(ctx, recipientUUID)
	return result.RowsAffected, nil
}

func (r *notificationRepositoryImpl) Delete(ctx context.Context, id int64) error {
	var n model.Notification
	if err := conn(ctx, r.db).Select("id", "recipient_uuid").Where("id = ?", id).First(&n).Error; err != nil {
		return WrapDBError(err)
	}
	if err := conn(ctx, r.db).Where("id = ?", id).Delete(&model.Notification{}).Error; err != nil {
		return WrapDBError(err)
	}
	r.InvalidateUnreadCount(ctx, n.RecipientUuid)
	return nil
}

func (r *notificationRepositoryImpl) InvalidateUnreadCount(ctx context.Context, recipientUUID string) {
	if r.redisClient == nil {
		return
	}
	if err := r.redisClient.Del(ctx, rediskey.NotifyUnreadCountKey(recipientUUID)).Err(); err != nil {
		LogRedisError(ctx, err)
	}
}

func (r *notificationRepositoryImpl) AcquireDedupLock(ctx context.Context, recipientUUID, makeID, alarmType string) (bool, func()) {
	if r.redisClient == nil {
		return true, func() {}
	}
	owner := util.NewUUID()
	key := rediskey.NotifyDedupLockKey(recipientUUID, makeID, alarmType)
	ok, unlock, err := pkgredis.TryLock(ctx, r.redisClient, key, owner, rediskey.NotifyDedupLockTTL)
	if err != nil {
		// Redis 故障时放行，由数据库查询兜底
		LogRedisError(ctx, err)
		return true, func() {}
	}
	return ok, unlock
}
