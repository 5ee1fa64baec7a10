package repository

import (
	"context"

	"CommunityBoard/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// articleRepositoryImpl 帖子数据访问层实现
type articleRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewArticleRepository 创建帖子仓储实例
func NewArticleRepository(db *gorm.DB, redisClient *redis.Client) IArticleRepository {
	return &articleRepositoryImpl{db: db, redisClient: redisClient}
}

func (r *articleRepositoryImpl) Create(ctx context.Context, article *model.Article) error {
	// 附件由附件仓储单独写入
	if err := conn(ctx, r.db).Omit("Attachments").Create(article).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

func (r *articleRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	var article model.Article
	if err := conn(ctx, r.db).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &article, nil
}

func (r *articleRepositoryImpl) GetWithAttachments(ctx context.Context, id int64) (*model.Article, error) {
	var article model.Article
	err := conn(ctx, r.db).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&article).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &article, nil
}

func (r *articleRepositoryImpl) UpdateContent(ctx context.Context, id int64, title, content string, referenced []string) error {
	// Select 保证 referenced 为 nil 时也会覆盖上一次的声明
	result := conn(ctx, r.db).Model(&model.Article{Id: id}).
		Select("title", "content", "referenced_tokens", "updated_at").
		Updates(&model.Article{Title: title, Content: content, ReferencedTokens: referenced})
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete 删除帖子。附件对象的清理由调用方在提交后处理。
func (r *articleRepositoryImpl) Delete(ctx context.Context, id int64) error {
	db := conn(ctx, r.db)
	if err := db.Where("article_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
		return WrapDBError(err)
	}
	if err := db.Where("article_id = ?", id).Delete(&model.ArticleLike{}).Error; err != nil {
		return WrapDBError(err)
	}
	if err := db.Where("article_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
		return WrapDBError(err)
	}
	result := db.Where("id = ?", id).Delete(&model.Article{})
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *articleRepositoryImpl) ListByAuthor(ctx context.Context, authorUUID string) ([]*model.Article, error) {
	var articles []*model.Article
	err := conn(ctx, r.db).
		Where("author_uuid = ?", authorUUID).
		Order("created_at DESC, id DESC").
		Find(&articles).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return articles, nil
}

func (r *articleRepositoryImpl) IncrViewCount(ctx context.Context, id int64) error {
	err := conn(ctx, r.db).Model(&model.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	return WrapDBError(err)
}

func (r *articleRepositoryImpl) AddLike(ctx context.Context, articleID int64, userUUID string) (bool, error) {
	like := &model.ArticleLike{ArticleId: articleID, UserUuid: userUUID}
	result := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *articleRepositoryImpl) RemoveLike(ctx context.Context, articleID int64, userUUID string) (bool, error) {
	result := conn(ctx, r.db).
		Where("article_id = ? AND user_uuid = ?", articleID, userUUID).
		Delete(&model.ArticleLike{})
	if result.Error != nil {
		return false, WrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *articleRepositoryImpl) RefreshLikeCount(ctx context.Context, articleID int64) (int64, error) {
	db := conn(ctx, r.db)
	var count int64
	if err := db.Model(&model.ArticleLike{}).Where("article_id = ?", articleID).Count(&count).Error; err != nil {
		return 0, WrapDBError(err)
	}
	err := db.Model(&model.Article{}).Where("id = ?", articleID).UpdateColumn("like_count", count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}
	return count, nil
}

func (r *articleRepositoryImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return WrapDBError(conn(ctx, r.db).Create(comment).Error)
}

func (r *articleRepositoryImpl) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	if err := conn(ctx, r.db).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &comment, nil
}
