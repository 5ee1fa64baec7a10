package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"CommunityBoard/apps/board/internal/metrics"
	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/apps/board/internal/storage"
	"CommunityBoard/apps/board/mq"
	"CommunityBoard/consts"
	"CommunityBoard/model"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/util"
)

// tokenPattern 正文中引用附件的写法：uuidFileName=<token>
var tokenPattern = regexp.MustCompile(`uuidFileName=([\w-]+)`)

// ExtractTokens 从正文中提取被引用的附件令牌（去重，保持出现顺序）
func ExtractTokens(content string) []string {
	matches := tokenPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		tokens = append(tokens, m[1])
	}
	return tokens
}

// referencedSet 正文中的令牌并上显式声明的令牌
func referencedSet(content string, explicit []string) map[string]struct{} {
	tokens := ExtractTokens(content)
	set := make(map[string]struct{}, len(tokens)+len(explicit))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	for _, t := range explicit {
		set[t] = struct{}{}
	}
	return set
}

// FileInput 待上传文件
type FileInput struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// ReconcileResult 一次编辑对账的结果
type ReconcileResult struct {
	// Removed 已删除记录的永久附件，提交后需要清理对象
	Removed []*model.Attachment
	// Uploaded 本次新上传的临时附件，事务回滚时需要清理对象
	Uploaded []*model.Attachment
}

// AttachmentManager 附件生命周期：临时上传、编辑对账、确认、取消。
// 记录的增删都在调用方的事务中完成，对象删除统一放到提交之后（PurgeBlobs）。
type AttachmentManager struct {
	attachRepo repository.IAttachmentRepository
	store      storage.Store
	orphans    mq.OrphanQueue
	maxRetries int
}

// NewAttachmentManager 创建附件生命周期管理器
func NewAttachmentManager(attachRepo repository.IAttachmentRepository, store storage.Store, orphans mq.OrphanQueue) *AttachmentManager {
	return &AttachmentManager{attachRepo: attachRepo, store: store, orphans: orphans, maxRetries: mq.DefaultOrphanMaxRetries}
}

// SetOrphanMaxRetries 设置孤儿对象任务的最大重试次数
func (m *AttachmentManager) SetOrphanMaxRetries(n int) {
	if n > 0 {
		m.maxRetries = n
	}
}

// UploadTemporary 以临时状态上传一批附件
func (m *AttachmentManager) UploadTemporary(ctx context.Context, article *model.Article, files []*FileInput) ([]*model.Attachment, error) {
	return m.upload(ctx, article, files, true)
}

// UploadPermanent 以永久状态上传一批附件（新建帖子时使用）
func (m *AttachmentManager) UploadPermanent(ctx context.Context, article *model.Article, files []*FileInput) ([]*model.Attachment, error) {
	return m.upload(ctx, article, files, false)
}

// upload 逐个写入对象，任一失败则清理本批已写入的对象，不写任何记录
func (m *AttachmentManager) upload(ctx context.Context, article *model.Article, files []*FileInput, temporary bool) ([]*model.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	stored := make([]*model.Attachment, 0, len(files))
	for _, f := range files {
		att, err := m.storeOne(ctx, article.Id, f, temporary)
		if err != nil {
			logger.Warn(ctx, "附件上传失败，回滚本批对象",
				logger.Int64("article_id", article.Id),
				logger.String("file_name", f.FileName),
				logger.Int("stored", len(stored)),
				logger.ErrorField("error", err),
			)
			_ = m.PurgeBlobs(ctx, stored)
			return nil, err
		}
		stored = append(stored, att)
	}

	if err := m.attachRepo.BatchCreate(ctx, stored); err != nil {
		_ = m.PurgeBlobs(ctx, stored)
		return nil, ErrInternal(err)
	}

	op := "uploaded"
	if !temporary {
		op = "uploaded_permanent"
	}
	metrics.RecordAttachments(op, len(stored))
	return stored, nil
}

func (m *AttachmentManager) storeOne(ctx context.Context, articleID int64, f *FileInput, temporary bool) (*model.Attachment, error) {
	if f.Open == nil {
		return nil, ErrInvalidInput(consts.CodeParamError, fmt.Errorf("file %s has no content", f.FileName))
	}
	rc, err := f.Open()
	if err != nil {
		return nil, ErrInvalidInput(consts.CodeParamError, fmt.Errorf("open %s: %w", f.FileName, err))
	}
	defer rc.Close()

	token := util.NewUUID()
	objectName := fmt.Sprintf("articles/%d/%s%s", articleID, token, strings.ToLower(filepath.Ext(f.FileName)))
	location, err := m.store.Store(ctx, objectName, rc, f.Size, f.ContentType)
	if err != nil {
		return nil, ErrStorageFailure(err)
	}
	return &model.Attachment{
		UuidFileName: token,
		FileName:     f.FileName,
		Location:     location,
		ContentType:  f.ContentType,
		Size:         f.Size,
		IsTemporary:  temporary,
		ArticleId:    articleID,
	}, nil
}

// ReconcileOnEdit 按新正文对账：删除不再被引用的永久附件记录，再把新文件作为临时附件上传。
// 引用集合是正文中的令牌加上 referencedTokens，正文里出现的令牌永远不会被删除。临时附件不参与对账。
func (m *AttachmentManager) ReconcileOnEdit(ctx context.Context, article *model.Article, content string, referencedTokens []string, files []*FileInput) (*ReconcileResult, error) {
	referenced := referencedSet(content, referencedTokens)

	current, err := m.attachRepo.ListByArticle(ctx, article.Id)
	if err != nil {
		return nil, ErrInternal(err)
	}

	result := &ReconcileResult{}
	ids := make([]int64, 0)
	for _, att := range current {
		if att.IsTemporary {
			continue
		}
		if _, ok := referenced[att.UuidFileName]; ok {
			continue
		}
		result.Removed = append(result.Removed, att)
		ids = append(ids, att.Id)
	}
	if _, err := m.attachRepo.DeleteByIDs(ctx, ids); err != nil {
		return nil, ErrInternal(err)
	}

	uploaded, err := m.UploadTemporary(ctx, article, files)
	if err != nil {
		return nil, err
	}
	result.Uploaded = uploaded
	return result, nil
}

// FinalizeEdit 确认编辑：已保存内容引用的临时附件转为永久，未被引用的删除记录并返回（对象由调用方提交后清理）。
// 重复调用无副作用。
func (m *AttachmentManager) FinalizeEdit(ctx context.Context, article *model.Article) (int64, []*model.Attachment, error) {
	temps, err := m.attachRepo.ListTemporary(ctx, article.Id)
	if err != nil {
		return 0, nil, ErrInternal(err)
	}
	if len(temps) == 0 {
		return 0, nil, nil
	}

	referenced := referencedSet(article.Content, article.ReferencedTokens)
	var dropped []*model.Attachment
	ids := make([]int64, 0)
	for _, att := range temps {
		if _, ok := referenced[att.UuidFileName]; ok {
			continue
		}
		dropped = append(dropped, att)
		ids = append(ids, att.Id)
	}
	if len(ids) > 0 {
		if _, err := m.attachRepo.DeleteByIDs(ctx, ids); err != nil {
			return 0, nil, ErrInternal(err)
		}
	}

	n, err := m.attachRepo.PromoteTemporary(ctx, article.Id)
	if err != nil {
		return 0, nil, ErrInternal(err)
	}
	metrics.RecordAttachments("promoted", int(n))
	metrics.RecordAttachments("discarded", len(dropped))
	return n, dropped, nil
}

// CancelEdit 删除全部临时附件记录，返回被删除的附件（对象由调用方提交后清理）。永久附件不受影响。
func (m *AttachmentManager) CancelEdit(ctx context.Context, article *model.Article) ([]*model.Attachment, error) {
	temps, err := m.attachRepo.ListTemporary(ctx, article.Id)
	if err != nil {
		return nil, ErrInternal(err)
	}
	if len(temps) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(temps))
	for _, att := range temps {
		ids = append(ids, att.Id)
	}
	if _, err := m.attachRepo.DeleteByIDs(ctx, ids); err != nil {
		return nil, ErrInternal(err)
	}
	return temps, nil
}

// PurgeBlobs 删除对象。失败的对象记日志、计数并投递到孤儿队列，不中断后续删除。
func (m *AttachmentManager) PurgeBlobs(ctx context.Context, attachments []*model.Attachment) error {
	var errs []error
	removed := 0
	for _, att := range attachments {
		if att == nil || att.Location == "" {
			continue
		}
		err := m.store.Delete(ctx, att.Location)
		if err == nil {
			removed++
			continue
		}

		metrics.RecordOrphanBlob()
		logger.Error(ctx, "附件对象删除失败，记录为孤儿对象",
			logger.String("location", att.Location),
			logger.String("token", att.UuidFileName),
			logger.Int64("article_id", att.ArticleId),
			logger.ErrorField("error", err),
		)
		if m.orphans != nil {
			task := mq.BuildOrphanTask(att.Location, att.ArticleId, att.UuidFileName, err)
			task.TraceID = ctxmeta.TraceID(ctx)
			task.MaxRetries = m.maxRetries
			if qErr := m.orphans.Enqueue(ctx, task); qErr != nil {
				logger.Warn(ctx, "孤儿对象入队失败", logger.String("location", att.Location), logger.ErrorField("error", qErr))
			}
		}
		errs = append(errs, fmt.Errorf("delete %s: %w", att.Location, err))
	}
	metrics.RecordAttachments("removed", removed)
	if len(errs) == 0 {
		return nil
	}
	return ErrStorageFailure(errors.Join(errs...))
}
