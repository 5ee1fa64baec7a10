package service

import (
	"context"
	"errors"

	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/consts"
	"CommunityBoard/model"
	"CommunityBoard/pkg/logger"

	"github.com/microcosm-cc/bluemonday"
)

// CommentService 评论。评论落库后再分发通知，通知失败不回滚评论。
type CommentService struct {
	articleRepo   repository.IArticleRepository
	notifications *NotificationService
	policy        *bluemonday.Policy
}

// NewCommentService 创建评论服务
func NewCommentService(articleRepo repository.IArticleRepository, notifications *NotificationService) *CommentService {
	return &CommentService{
		articleRepo:   articleRepo,
		notifications: notifications,
		policy:        bluemonday.StrictPolicy(),
	}
}

// Add 发表评论。parentID > 0 表示回复，额外通知父评论作者。
// 返回的 error 只包含通知分发失败时，comment 仍然非 nil。
func (s *CommentService) Add(ctx context.Context, actor string, articleID int64, content string, parentID int64) (*model.Comment, error) {
	if _, err := s.articleRepo.GetByID(ctx, articleID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound(consts.CodeArticleNotFound, err)
		}
		return nil, ErrInternal(err)
	}
	if parentID > 0 {
		parent, err := s.articleRepo.GetComment(ctx, parentID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return nil, ErrNotFound(consts.CodeCommentNotFound, err)
			}
			return nil, ErrInternal(err)
		}
		if parent.ArticleId != articleID {
			return nil, ErrNotFound(consts.CodeCommentNotFound, nil)
		}
	}

	comment := &model.Comment{
		ArticleId:  articleID,
		AuthorUuid: actor,
		ParentId:   parentID,
		Content:    s.policy.Sanitize(content),
	}
	if err := s.articleRepo.CreateComment(ctx, comment); err != nil {
		return nil, ErrInternal(err)
	}

	var errs []error
	if _, err := s.notifications.Dispatch(ctx, model.AlarmTypeComment, articleID, actor); err != nil {
		errs = append(errs, err)
	}
	if parentID > 0 {
		if _, err := s.notifications.Dispatch(ctx, model.AlarmTypeRecomment, parentID, actor); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		logger.Warn(ctx, "评论通知分发失败", logger.Int64("comment_id", comment.Id), logger.ErrorField("error", err))
		return comment, err
	}
	return comment, nil
}

// LikeResult 点赞切换结果
type LikeResult struct {
	Liked     bool
	LikeCount int64
}

// LikeService 点赞
type LikeService struct {
	tx            repository.ITransactor
	articleRepo   repository.IArticleRepository
	notifications *NotificationService
}

// NewLikeService 创建点赞服务
func NewLikeService(tx repository.ITransactor, articleRepo repository.IArticleRepository, notifications *NotificationService) *LikeService {
	return &LikeService{tx: tx, articleRepo: articleRepo, notifications: notifications}
}

// Toggle 切换点赞状态，只有变为已赞时分发 LIKE 通知。
// 通知分发失败时点赞结果照常返回，error 携带分发错误。
func (s *LikeService) Toggle(ctx context.Context, actor string, articleID int64) (*LikeResult, error) {
	result := &LikeResult{}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.articleRepo.GetByID(ctx, articleID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrNotFound(consts.CodeArticleNotFound, err)
			}
			return ErrInternal(err)
		}
		added, err := s.articleRepo.AddLike(ctx, articleID, actor)
		if err != nil {
			return ErrInternal(err)
		}
		if !added {
			if _, err := s.articleRepo.RemoveLike(ctx, articleID, actor); err != nil {
				return ErrInternal(err)
			}
		}
		result.Liked = added
		result.LikeCount, err = s.articleRepo.RefreshLikeCount(ctx, articleID)
		if err != nil {
			return ErrInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Liked {
		if _, err := s.notifications.Dispatch(ctx, model.AlarmTypeLike, articleID, actor); err != nil {
			return result, err
		}
	}
	return result, nil
}
