package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	rediskey "CommunityBoard/consts/redisKey"
	"CommunityBoard/model"
	"CommunityBoard/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// userRepositoryImpl 用户信息数据访问层实现
type userRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewUserRepository 创建用户信息仓储实例
func NewUserRepository(db *gorm.DB, redisClient *redis.Client) IUserRepository {
	return &userRepositoryImpl{db: db, redisClient: redisClient}
}

// GetByUUID 根据UUID查询用户信息，用户不存在返回 ErrRecordNotFound
func (r *userRepositoryImpl) GetByUUID(ctx context.Context, uuid string) (*model.UserInfo, error) {
	cacheKey := rediskey.UserInfoKey(uuid)

	// ==================== 1. 先查 Redis ====================
	if r.redisClient != nil {
		cached, err := r.redisClient.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			if cached == "{}" {
				return nil, ErrRecordNotFound
			}
			var user model.UserInfo
			if json.Unmarshal([]byte(cached), &user) == nil {
				return &user, nil
			}
		case !errors.Is(err, redis.Nil):
			LogRedisError(ctx, err)
		}
	}

	// ==================== 2. 回源 MySQL ====================
	var user model.UserInfo
	err := conn(ctx, r.db).Where("uuid = ?", uuid).First(&user).Error
	if err != nil {
		err = WrapDBError(err)
		if errors.Is(err, ErrRecordNotFound) {
			// 空值占位，防止缓存穿透
			r.setCache(ctx, cacheKey, "{}", getRandomExpireTime(5*time.Minute))
		}
		return nil, err
	}

	// ==================== 3. 回写缓存 ====================
	if data, err := json.Marshal(user); err == nil {
		r.setCache(ctx, cacheKey, string(data), getRandomExpireTime(rediskey.UserInfoTTL))
	}
	return &user, nil
}

// Create 创建用户
func (r *userRepositoryImpl) Create(ctx context.Context, user *model.UserInfo) error {
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		return WrapDBError(err)
	}
	if r.redisClient != nil {
		if err := r.redisClient.Del(ctx, rediskey.UserInfoKey(user.Uuid)).Err(); err != nil {
			LogRedisError(ctx, err)
		}
	}
	return nil
}

func (r *userRepositoryImpl) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if r.redisClient == nil {
		return
	}
	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := r.redisClient.Set(runCtx, key, value, ttl).Err(); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}
