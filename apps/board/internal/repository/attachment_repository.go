package repository

import (
	"context"
	"time"

	"CommunityBoard/model"

	"gorm.io/gorm"
)

// attachmentRepositoryImpl 附件记录数据访问层实现
type attachmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAttachmentRepository 创建附件仓储实例
func NewAttachmentRepository(db *gorm.DB) IAttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

func (r *attachmentRepositoryImpl) BatchCreate(ctx context.Context, attachments []*model.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return WrapDBError(conn(ctx, r.db).CreateInBatches(attachments, 100).Error)
}

func (r *attachmentRepositoryImpl) ListByArticle(ctx context.Context, articleID int64) ([]*model.Attachment, error) {
	var list []*model.Attachment
	err := conn(ctx, r.db).Where("article_id = ?", articleID).Order("id ASC").Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

func (r *attachmentRepositoryImpl) ListTemporary(ctx context.Context, articleID int64) ([]*model.Attachment, error) {
	var list []*model.Attachment
	err := conn(ctx, r.db).
		Where("article_id = ? AND is_temporary = ?", articleID, true).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

func (r *attachmentRepositoryImpl) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("id IN ?", ids).Delete(&model.Attachment{})
	if result.Error != nil {
		return 0, WrapDBError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *attachmentRepositoryImpl) PromoteTemporary(ctx context.Context, articleID int64) (int64, error) {
	result := conn(ctx, r.db).Model(&model.Attachment{}).
		Where("article_id = ? AND is_temporary = ?", articleID, true).
		Update("is_temporary", false)
	if result.Error != nil {
		return 0, WrapDBError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *attachmentRepositoryImpl) ListStaleTemporary(ctx context.Context, before time.Time, limit int) ([]*model.Attachment, error) {
	if limit <= 0 {
		limit = 200
	}
	var list []*model.Attachment
	err := conn(ctx, r.db).
		Where("is_temporary = ? AND created_at < ?", true, before).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}
