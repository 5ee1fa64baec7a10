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

// InteractionHandler 评论与点赞接口
type InteractionHandler struct {
	commentService service.ICommentService
	likeService    service.ILikeService
}

// NewInteractionHandler 创建互动处理器
func NewInteractionHandler(commentService service.ICommentService, likeService service.ILikeService) *InteractionHandler {
	return &InteractionHandler{
		commentService: commentService,
		likeService:    likeService,
	}
}

// AddComment 发表评论
// @Router /api/v1/articles/{id}/comments [post]
func (h *InteractionHandler) AddComment(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	comment, err := h.commentService.Add(ctx, actor, id, req.Content, req.ParentID)
	if err != nil && comment == nil {
		failWith(ctx, c, err, "评论服务内部错误")
		return
	}
	// 评论已保存，通知推送失败只作为警告返回
	succeed(ctx, c, converter.CommentToResponse(comment), err, "评论通知推送失败")
}

// ToggleLike 点赞/取消点赞
// @Router /api/v1/articles/{id}/like [post]
func (h *InteractionHandler) ToggleLike(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.likeService.Toggle(ctx, actor, id)
	if err != nil && res == nil {
		failWith(ctx, c, err, "点赞服务内部错误")
		return
	}
	succeed(ctx, c, &dto.LikeResponse{Liked: res.Liked, LikeCount: res.LikeCount}, err, "点赞通知推送失败")
}
