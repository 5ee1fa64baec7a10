package handler

import (
	"CommunityBoard/apps/board/internal/converter"
	"CommunityBoard/apps/board/internal/dto"
	"CommunityBoard/apps/board/internal/service"
	"CommunityBoard/consts"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/result"

	"github.com/gin-gonic/gin"
)

// ArticleHandler 帖子与附件编辑接口
type ArticleHandler struct {
	articleService service.IArticleService
	maxFileSize    int64
}

// NewArticleHandler 创建帖子处理器
// maxFileSize: 单个附件大小上限（字节），<=0 表示不限制
func NewArticleHandler(articleService service.IArticleService, maxFileSize int64) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		maxFileSize:    maxFileSize,
	}
}

// Create 发帖
// @Summary 发帖（附件直接为正式附件）
// @Accept multipart/form-data
// @Router /api/v1/articles [post]
func (h *ArticleHandler) Create(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	files, code := collectFiles(c, h.maxFileSize)
	if code != consts.CodeSuccess {
		result.Fail(c, nil, code)
		return
	}

	article, err := h.articleService.Create(ctx, actor, req.Title, req.Content, files)
	if err != nil {
		failWith(ctx, c, err, "发帖服务内部错误")
		return
	}
	result.Success(c, converter.ArticleToResponse(article))
}

// Get 帖子详情
// @Router /api/v1/articles/{id} [get]
func (h *ArticleHandler) Get(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	article, err := h.articleService.Get(ctx, id)
	if err != nil {
		failWith(ctx, c, err, "获取帖子服务内部错误")
		return
	}
	result.Success(c, converter.ArticleToResponse(article))
}

// ListMine 我的帖子
// @Router /api/v1/articles/mine [get]
func (h *ArticleHandler) ListMine(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.articleService.ListByAuthor(ctx, actor)
	if err != nil {
		failWith(ctx, c, err, "获取帖子列表服务内部错误")
		return
	}
	result.Success(c, converter.ArticlesToList(list))
}

// Update 编辑帖子
// 新上传的附件为临时附件，正文不再引用的正式附件被移除。
// @Accept multipart/form-data
// @Router /api/v1/articles/{id} [put]
func (h *ArticleHandler) Update(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	files, code := collectFiles(c, h.maxFileSize)
	if code != consts.CodeSuccess {
		result.Fail(c, nil, code)
		return
	}

	in := &service.UpdateArticleInput{
		Title:            req.Title,
		Content:          req.Content,
		ReferencedTokens: referencedTokens(c),
		Files:            files,
	}
	article, err := h.articleService.Update(ctx, actor, id, in)
	if err != nil {
		failWith(ctx, c, err, "编辑帖子服务内部错误")
		return
	}
	result.Success(c, converter.ArticleToResponse(article))
}

// UploadAttachments 编辑中上传临时附件，返回引用令牌
// @Accept multipart/form-data
// @Router /api/v1/articles/{id}/attachments [post]
func (h *ArticleHandler) UploadAttachments(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	files, code := collectFiles(c, h.maxFileSize)
	if code != consts.CodeSuccess {
		result.Fail(c, nil, code)
		return
	}
	if len(files) == 0 {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	uploaded, err := h.articleService.UploadAttachments(ctx, actor, id, files)
	if err != nil {
		failWith(ctx, c, err, "上传附件服务内部错误")
		return
	}
	result.Success(c, &dto.UploadAttachmentsResponse{Items: converter.AttachmentsToItems(uploaded)})
}

// FinalizeEdit 完成编辑，临时附件转正
// @Router /api/v1/articles/{id}/edit/finalize [post]
func (h *ArticleHandler) FinalizeEdit(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	promoted, removed, err := h.articleService.FinalizeEdit(ctx, actor, id)
	if err != nil {
		failWith(ctx, c, err, "完成编辑服务内部错误")
		return
	}
	result.Success(c, &dto.FinalizeEditResponse{Promoted: promoted, Removed: removed})
}

// CancelEdit 取消编辑，丢弃临时附件
// @Router /api/v1/articles/{id}/edit/cancel [post]
func (h *ArticleHandler) CancelEdit(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	removed, err := h.articleService.CancelEdit(ctx, actor, id)
	if err != nil {
		failWith(ctx, c, err, "取消编辑服务内部错误")
		return
	}
	result.Success(c, &dto.CancelEditResponse{Removed: removed})
}

// Delete 删除帖子及其全部附件
// @Router /api/v1/articles/{id} [delete]
func (h *ArticleHandler) Delete(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.articleService.Delete(ctx, actor, id); err != nil {
		failWith(ctx, c, err, "删除帖子服务内部错误")
		return
	}
	result.Success(c, nil)
}

// referencedTokens 读取客户端显式上报的引用令牌，服务端会再并上正文中的令牌。
// 字段缺失返回 nil，字段存在但全为空返回空切片。
func referencedTokens(c *gin.Context) []string {
	values, ok := c.GetPostFormArray("referenced")
	if !ok {
		return nil
	}
	tokens := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			tokens = append(tokens, v)
		}
	}
	return tokens
}
