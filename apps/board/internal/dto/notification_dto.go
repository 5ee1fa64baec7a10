package dto

// ==================== 通知相关 DTO ====================

// PageRequest 分页查询参数
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// PaginationInfo 分页信息
type PaginationInfo struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// NotificationItem 通知信息
type NotificationItem struct {
	ID        int64  `json:"id"`
	AlarmType string `json:"alarmType"` // LIKE / COMMENT / RECOMMENT / FRIEND_REQUEST
	Message   string `json:"message"`
	TargetID  int64  `json:"targetId"`
	MakeID    string `json:"makeId"` // 触发人UUID
	IsRead    bool   `json:"isRead"`
	CreatedAt int64  `json:"createdAt"`
}

// NotificationListResponse 通知列表
type NotificationListResponse struct {
	Items      []*NotificationItem `json:"items"`
	Pagination *PaginationInfo     `json:"pagination,omitempty"`
}

// UnreadCountResponse 未读数
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse 全部已读
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// ==================== 好友相关 DTO ====================

// SendFriendRequestRequest 发送好友申请
type SendFriendRequestRequest struct {
	TargetUUID string `json:"targetUuid" binding:"required"`
}

// SendFriendRequestResponse 发送好友申请响应
type SendFriendRequestResponse struct {
	NotificationID int64 `json:"notificationId"` // 对方收到的申请通知ID
}

// FriendItem 好友信息
type FriendItem struct {
	FriendUUID string `json:"friendUuid"`
	Since      int64  `json:"since"` // 成为好友的时间（毫秒时间戳）
}

// FriendListResponse 好友列表
type FriendListResponse struct {
	Items []*FriendItem `json:"items"`
}
