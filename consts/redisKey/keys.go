package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// NotifyUnreadCountTTL 未读通知数缓存 TTL
	NotifyUnreadCountTTL = 10 * time.Minute

	// NotifyDedupLockTTL 点赞通知去重锁 TTL（覆盖一次 查询+写入 即可）
	NotifyDedupLockTTL = 3 * time.Second

	// SweeperLockTTL 临时附件清理任务的选主锁 TTL
	SweeperLockTTL = 5 * time.Minute

	// UserInfoTTL 用户信息缓存 TTL
	UserInfoTTL = 1 * time.Hour

	// DeviceActiveTTL 设备活跃时间缓存 TTL
	DeviceActiveTTL = 45 * 24 * time.Hour
)

// ==================== Key 构造函数 ====================

// NotifyUnreadCountKey 未读通知数 Key: board:notify:unread:{user_uuid}
func NotifyUnreadCountKey(userUUID string) string {
	return fmt.Sprintf("board:notify:unread:%s", userUUID)
}

// NotifyDedupLockKey 点赞通知去重锁 Key: board:notify:dedup:{recipient}:{actor}:{kind}
func NotifyDedupLockKey(recipient, actor, kind string) string {
	return fmt.Sprintf("board:notify:dedup:%s:%s:%s", recipient, actor, kind)
}

// SweeperLockKey 临时附件清理选主锁 Key: board:job:temp_sweeper
func SweeperLockKey() string {
	return "board:job:temp_sweeper"
}

// UserInfoKey 用户信息缓存 Key: user:info:{uuid}
func UserInfoKey(uuid string) string {
	return fmt.Sprintf("user:info:%s", uuid)
}

// DeviceActiveKey 设备活跃时间 Key: user:devices:active:{user_uuid}
func DeviceActiveKey(userUUID string) string {
	return fmt.Sprintf("user:devices:active:%s", userUUID)
}

// RateLimitUserKey 用户限流令牌桶 Key: board:rate:user:{user_uuid}
func RateLimitUserKey(userUUID string) string {
	return fmt.Sprintf("board:rate:user:%s", userUUID)
}
