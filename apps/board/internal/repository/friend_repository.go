package repository

import (
	"context"

	"CommunityBoard/model"

	"gorm.io/gorm"
)

// friendRepositoryImpl 好友关系数据访问层实现。
// 一对用户只有一条记录，user_uuid 为申请人，查询时需要同时匹配两个方向。
type friendRepositoryImpl struct {
	db *gorm.DB
}

// NewFriendRepository 创建好友关系仓储实例
func NewFriendRepository(db *gorm.DB) IFriendRepository {
	return &friendRepositoryImpl{db: db}
}

// pairScope 匹配两个方向的关系记录
func pairScope(a, b string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_uuid = ? AND friend_uuid = ?) OR (user_uuid = ? AND friend_uuid = ?)", a, b, b, a)
	}
}

func (r *friendRepositoryImpl) CreatePending(ctx context.Context, rel *model.FriendRelation) error {
	rel.Status = model.FriendStatusPending
	return WrapDBError(conn(ctx, r.db).Create(rel).Error)
}

func (r *friendRepositoryImpl) GetBetween(ctx context.Context, a, b string) (*model.FriendRelation, error) {
	var rel model.FriendRelation
	if err := conn(ctx, r.db).Scopes(pairScope(a, b)).First(&rel).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &rel, nil
}

func (r *friendRepositoryImpl) AcceptPending(ctx context.Context, requesterUUID, recipientUUID string) (bool, error) {
	result := conn(ctx, r.db).Model(&model.FriendRelation{}).
		Where("user_uuid = ? AND friend_uuid = ? AND status = ?", requesterUUID, recipientUUID, model.FriendStatusPending).
		Update("status", model.FriendStatusAccepted)
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *friendRepositoryImpl) DeletePending(ctx context.Context, requesterUUID, recipientUUID string) (bool, error) {
	result := conn(ctx, r.db).
		Where("user_uuid = ? AND friend_uuid = ? AND status = ?", requesterUUID, recipientUUID, model.FriendStatusPending).
		Delete(&model.FriendRelation{})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *friendRepositoryImpl) DeleteAccepted(ctx context.Context, a, b string) (bool, error) {
	result := conn(ctx, r.db).
		Scopes(pairScope(a, b)).
		Where("status = ?", model.FriendStatusAccepted).
		Delete(&model.FriendRelation{})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *friendRepositoryImpl) ListFriends(ctx context.Context, userUUID string) ([]*model.FriendRelation, error) {
	var list []*model.FriendRelation
	err := conn(ctx, r.db).
		Where("(user_uuid = ? OR friend_uuid = ?) AND status = ?", userUUID, userUUID, model.FriendStatusAccepted).
		Order("updated_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}
