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

// UpdateArticleInput 编辑帖子
type UpdateArticleInput struct {
	Title   string
	Content string
	// ReferencedTokens 客户端显式声明仍被引用的附件令牌，正文中出现的令牌无需重复声明
	ReferencedTokens []string
	Files            []*FileInput
}

// ArticleService 帖子服务。每个写操作是一个事务，附件对象在提交后清理。
type ArticleService struct {
	tx          repository.ITransactor
	articleRepo repository.IArticleRepository
	attachments *AttachmentManager
	contentPol  *bluemonday.Policy
	titlePol    *bluemonday.Policy
}

// NewArticleService 创建帖子服务
func NewArticleService(tx repository.ITransactor, articleRepo repository.IArticleRepository, attachments *AttachmentManager) *ArticleService {
	return &ArticleService{
		tx:          tx,
		articleRepo: articleRepo,
		attachments: attachments,
		contentPol:  bluemonday.UGCPolicy(),
		titlePol:    bluemonday.StrictPolicy(),
	}
}

// Create 发帖，附件直接以永久状态保存
func (s *ArticleService) Create(ctx context.Context, actor, title, content string, files []*FileInput) (*model.Article, error) {
	if actor == "" {
		return nil, ErrUnauthorized(consts.CodeUnauthorized, nil)
	}
	article := &model.Article{
		Title:      s.titlePol.Sanitize(title),
		Content:    s.contentPol.Sanitize(content),
		AuthorUuid: actor,
	}

	var uploaded []*model.Attachment
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.articleRepo.Create(ctx, article); err != nil {
			return ErrInternal(err)
		}
		atts, err := s.attachments.UploadPermanent(ctx, article, files)
		if err != nil {
			return err
		}
		uploaded = atts
		return nil
	})
	if err != nil {
		s.purgeAfterRollback(ctx, uploaded)
		return nil, err
	}

	article.Attachments = uploaded
	logger.Info(ctx, "帖子已创建",
		logger.Int64("article_id", article.Id),
		logger.Int("attachments", len(uploaded)),
	)
	return article, nil
}

// Get 查看帖子，浏览量 +1
func (s *ArticleService) Get(ctx context.Context, id int64) (*model.Article, error) {
	if err := s.articleRepo.IncrViewCount(ctx, id); err != nil {
		return nil, ErrInternal(err)
	}
	article, err := s.articleRepo.GetWithAttachments(ctx, id)
	if err != nil {
		return nil, s.mapArticleErr(err)
	}
	return article, nil
}

// Update 编辑帖子：对账附件、上传新的临时附件并保存正文，三步在同一事务中完成。
// 被移除的永久附件对象在提交后删除，事务回滚时删除本次上传的对象。
func (s *ArticleService) Update(ctx context.Context, actor string, id int64, in *UpdateArticleInput) (*model.Article, error) {
	content := s.contentPol.Sanitize(in.Content)
	title := s.titlePol.Sanitize(in.Title)

	var result *ReconcileResult
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		article, err := s.loadOwned(ctx, actor, id)
		if err != nil {
			return err
		}
		result, err = s.attachments.ReconcileOnEdit(ctx, article, content, in.ReferencedTokens, in.Files)
		if err != nil {
			return err
		}
		if err := s.articleRepo.UpdateContent(ctx, id, title, content, in.ReferencedTokens); err != nil {
			return s.mapArticleErr(err)
		}
		return nil
	})
	if err != nil {
		if result != nil {
			s.purgeAfterRollback(ctx, result.Uploaded)
		}
		return nil, err
	}

	s.purgeAfterCommit(ctx, result.Removed)
	article, err := s.articleRepo.GetWithAttachments(ctx, id)
	if err != nil {
		return nil, s.mapArticleErr(err)
	}
	return article, nil
}

// UploadAttachments 编辑过程中单独上传临时附件，返回的令牌供正文引用
func (s *ArticleService) UploadAttachments(ctx context.Context, actor string, id int64, files []*FileInput) ([]*model.Attachment, error) {
	var uploaded []*model.Attachment
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		article, err := s.loadOwned(ctx, actor, id)
		if err != nil {
			return err
		}
		uploaded, err = s.attachments.UploadTemporary(ctx, article, files)
		return err
	})
	if err != nil {
		s.purgeAfterRollback(ctx, uploaded)
		return nil, err
	}
	return uploaded, nil
}

// FinalizeEdit 确认编辑：被引用的临时附件转正，其余丢弃。返回转正和丢弃的数量。
func (s *ArticleService) FinalizeEdit(ctx context.Context, actor string, id int64) (int64, int, error) {
	var (
		promoted int64
		dropped  []*model.Attachment
	)
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		article, err := s.loadOwned(ctx, actor, id)
		if err != nil {
			return err
		}
		promoted, dropped, err = s.attachments.FinalizeEdit(ctx, article)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	s.purgeAfterCommit(ctx, dropped)
	return promoted, len(dropped), nil
}

// CancelEdit 放弃编辑，删除全部临时附件
func (s *ArticleService) CancelEdit(ctx context.Context, actor string, id int64) (int, error) {
	var removed []*model.Attachment
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		article, err := s.loadOwned(ctx, actor, id)
		if err != nil {
			return err
		}
		removed, err = s.attachments.CancelEdit(ctx, article)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.purgeAfterCommit(ctx, removed)
	return len(removed), nil
}

// Delete 删除帖子及其评论、点赞和附件
func (s *ArticleService) Delete(ctx context.Context, actor string, id int64) error {
	var removed []*model.Attachment
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		article, err := s.loadOwned(ctx, actor, id)
		if err != nil {
			return err
		}
		removed, err = s.attachments.attachRepo.ListByArticle(ctx, article.Id)
		if err != nil {
			return ErrInternal(err)
		}
		if err := s.articleRepo.Delete(ctx, article.Id); err != nil {
			return s.mapArticleErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.purgeAfterCommit(ctx, removed)
	return nil
}

// ListByAuthor 作者的全部帖子
func (s *ArticleService) ListByAuthor(ctx context.Context, author string) ([]*model.Article, error) {
	list, err := s.articleRepo.ListByAuthor(ctx, author)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return list, nil
}

// loadOwned 查询帖子并校验作者
func (s *ArticleService) loadOwned(ctx context.Context, actor string, id int64) (*model.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapArticleErr(err)
	}
	if actor == "" || article.AuthorUuid != actor {
		return nil, ErrUnauthorized(consts.CodeArticleNotAuthor, nil)
	}
	return article, nil
}

func (s *ArticleService) mapArticleErr(err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return ErrNotFound(consts.CodeArticleNotFound, err)
	}
	return ErrInternal(err)
}

// purgeAfterCommit 提交后删除对象，失败只记录（孤儿对象已入队）
func (s *ArticleService) purgeAfterCommit(ctx context.Context, removed []*model.Attachment) {
	if len(removed) == 0 {
		return
	}
	if err := s.attachments.PurgeBlobs(ctx, removed); err != nil {
		logger.Warn(ctx, "提交后清理附件对象未全部成功", logger.ErrorField("error", err))
	}
}

// purgeAfterRollback 事务回滚后删除本次写入的对象
func (s *ArticleService) purgeAfterRollback(ctx context.Context, uploaded []*model.Attachment) {
	if len(uploaded) == 0 {
		return
	}
	logger.Warn(ctx, "事务回滚，清理已上传的附件对象", logger.Int("count", len(uploaded)))
	_ = s.attachments.PurgeBlobs(ctx, uploaded)
}
