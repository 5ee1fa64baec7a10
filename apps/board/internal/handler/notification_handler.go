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

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// NotificationHandler 通知接口
type NotificationHandler struct {
	notificationService service.INotificationService
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(notificationService service.INotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetUnread 未读通知
// @Router /api/v1/notifications/unread [get]
func (h *NotificationHandler) GetUnread(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.notificationService.GetUnread(ctx, actor)
	if err != nil {
		failWith(ctx, c, err, "获取未读通知服务内部错误")
		return
	}
	result.Success(c, converter.NotificationsToList(list, nil))
}

// GetUnreadCount 未读数
// @Router /api/v1/notifications/unread/count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.GetUnreadCount(ctx, actor)
	if err != nil {
		failWith(ctx, c, err, "获取未读数服务内部错误")
		return
	}
	result.Success(c, &dto.UnreadCountResponse{Count: count})
}

// List 分页查询通知
// @Param page query int false "页码"
// @Param pageSize query int false "每页大小"
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	if req.Page == 0 {
		req.Page = defaultPage
	}
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}

	list, total, err := h.notificationService.List(ctx, actor, req.Page, req.PageSize)
	if err != nil {
		failWith(ctx, c, err, "获取通知列表服务内部错误")
		return
	}
	result.Success(c, converter.NotificationsToList(list, &dto.PaginationInfo{
		Page:     req.Page,
		PageSize: req.PageSize,
		Total:    total,
	}))
}

// MarkAsRead 标记已读
// @Router /api/v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(ctx, actor, id); err != nil {
		failWith(ctx, c, err, "标记已读服务内部错误")
		return
	}
	result.Success(c, nil)
}

// MarkAllAsRead 全部已读
// @Router /api/v1/notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAllAsRead(ctx, actor)
	if err != nil {
		failWith(ctx, c, err, "全部已读服务内部错误")
		return
	}
	result.Success(c, &dto.MarkAllReadResponse{Updated: n})
}

// Delete 删除通知
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(ctx, actor, id); err != nil {
		failWith(ctx, c, err, "删除通知服务内部错误")
		return
	}
	result.Success(c, nil)
}
