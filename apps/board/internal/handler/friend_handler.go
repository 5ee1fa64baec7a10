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

// FriendHandler 好友接口
type FriendHandler struct {
	friendService service.IFriendService
}

// NewFriendHandler 创建好友处理器
func NewFriendHandler(friendService service.IFriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// SendRequest 发送好友申请
// @Router /api/v1/friends/requests [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	n, err := h.friendService.SendFriendRequest(ctx, actor, req.TargetUUID)
	if err != nil && n == nil {
		failWith(ctx, c, err, "发送好友申请服务内部错误")
		return
	}
	succeed(ctx, c, &dto.SendFriendRequestResponse{NotificationID: n.Id}, err, "好友申请推送失败")
}

// Accept 同意好友申请
// @Router /api/v1/friends/requests/{notificationId}/accept [post]
func (h *FriendHandler) Accept(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "notificationId")
	if !ok {
		return
	}

	if err := h.friendService.AcceptFriendRequest(ctx, actor, id); err != nil {
		failWith(ctx, c, err, "同意好友申请服务内部错误")
		return
	}
	result.Success(c, nil)
}

// Reject 拒绝好友申请
// @Router /api/v1/friends/requests/{notificationId}/reject [post]
func (h *FriendHandler) Reject(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "notificationId")
	if !ok {
		return
	}

	if err := h.friendService.RejectFriendRequest(ctx, actor, id); err != nil {
		failWith(ctx, c, err, "拒绝好友申请服务内部错误")
		return
	}
	result.Success(c, nil)
}

// List 好友列表
// @Router /api/v1/friends [get]
func (h *FriendHandler) List(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.friendService.ListFriends(ctx, actor)
	if err != nil {
		failWith(ctx, c, err, "获取好友列表服务内部错误")
		return
	}
	result.Success(c, converter.FriendsToList(actor, list))
}

// Delete 删除好友
// @Router /api/v1/friends/{uuid} [delete]
func (h *FriendHandler) Delete(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	friend := c.Param("uuid")
	if friend == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.friendService.DeleteFriend(ctx, actor, friend); err != nil {
		failWith(ctx, c, err, "删除好友服务内部错误")
		return
	}
	result.Success(c, nil)
}
