package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeMethodNotAllowed = 10004 // 请求方法不允许
	CodeTooManyRequests  = 10005 // 请求过于频繁
	CodeBodyTooLarge     = 10006 // 请求体过大
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未认证
	CodeInvalidToken   = 20002 // Token 无效
	CodeTokenExpired   = 20003 // Token 已过期
	CodePermissionDeny = 20004 // 权限不足
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound = 11001 // 用户不存在
)

// 好友模块错误 (12xxx)
const (
	CodeAlreadyFriend         = 12001 // 已经是好友
	CodeFriendRequestSent     = 12002 // 好友申请已发送
	CodeNotFriend             = 12003 // 不存在该好友关系
	CodeFriendRequestHandled  = 12004 // 好友申请已处理
	CodeFriendRequestSelf     = 12005 // 不能添加自己为好友
	CodeFriendRelationMissing = 12006 // 申请对应的好友关系不存在
	CodeFriendRequestPending  = 12007 // 好友申请待处理
)

// 帖子模块错误 (15xxx)
const (
	CodeArticleNotFound    = 15001 // 帖子不存在
	CodeArticleNotAuthor   = 15002 // 不是帖子作者
	CodeAttachmentUpload   = 15003 // 附件上传失败
	CodeAttachmentTooLarge = 15004 // 附件过大
	CodeCommentNotFound    = 15005 // 评论不存在
)

// 通知模块错误 (16xxx)
const (
	CodeNotificationNotFound = 16001 // 通知不存在
	CodeNotificationNotOwner = 16002 // 不是通知接收人
	CodeNotificationState    = 16003 // 通知状态不允许该操作
	CodeNotificationDispatch = 16004 // 通知已保存但事件投递失败
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
	CodeTimeoutError       = 30003 // 请求超时
	CodeStorageFailure     = 30004 // 存储服务异常
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeMethodNotAllowed: "请求方法不允许",
	CodeTooManyRequests:  "请求过于频繁",
	CodeBodyTooLarge:     "请求体过大",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 用户模块
	CodeUserNotFound: "用户不存在",

	// 好友模块
	CodeAlreadyFriend:         "已经是好友",
	CodeFriendRequestSent:     "好友申请已发送",
	CodeNotFriend:             "不存在该好友关系",
	CodeFriendRequestHandled:  "好友申请已处理",
	CodeFriendRequestSelf:     "不能添加自己为好友",
	CodeFriendRelationMissing: "好友申请对应的关系不存在",
	CodeFriendRequestPending:  "好友申请待处理，请先同意或拒绝",

	// 帖子模块
	CodeArticleNotFound:    "帖子不存在",
	CodeArticleNotAuthor:   "只有作者可以操作该帖子",
	CodeAttachmentUpload:   "附件上传失败",
	CodeAttachmentTooLarge: "附件过大",
	CodeCommentNotFound:    "评论不存在",

	// 通知模块
	CodeNotificationNotFound: "通知不存在",
	CodeNotificationNotOwner: "不是通知接收人",
	CodeNotificationState:    "通知状态不允许该操作",
	CodeNotificationDispatch: "通知已保存，推送失败",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
	CodeTimeoutError:       "请求超时",
	CodeStorageFailure:     "存储服务异常",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为非服务端错误（客户端/业务错误）。
// 服务端错误 (3xxxx) 需要记录日志，其余直接返回给客户端。
func IsNonServerError(code int32) bool {
	return code != CodeSuccess && (code < 30000 || code >= 40000)
}
