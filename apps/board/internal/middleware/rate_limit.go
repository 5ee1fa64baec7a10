package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"CommunityBoard/consts"
	rediskey "CommunityBoard/consts/redisKey"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/result"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// ==================== Redis 令牌桶 Lua 脚本 ====================

// tokenBucketScript 原子地补充令牌并判断是否放行
//
//	KEYS[1]: 限流 key
//	ARGV[1]: 当前时间戳 (毫秒)
//	ARGV[2]: 令牌桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 每次请求消耗的令牌数
//
// 返回 1 放行，0 限流
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

local time_diff = math.max(0, now - last_time)
local new_tokens = math.floor((time_diff * rate) / 1000)
if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

local fill_time = math.ceil(capacity / rate)
redis.call('EXPIRE', key, math.max(60, fill_time * 2))

return allowed
`)

// ==================== 用户限流器 ====================

// UserLimiter 按用户限流。
// 有 Redis 时使用集群共享的令牌桶；Redis 不可用或出错时降级为进程内令牌桶，
// 进程内的限流器放在定长 LRU 里，避免用户量增长时内存无限膨胀。
type UserLimiter struct {
	redisClient *redis.Client
	rate        float64
	burst       int

	mu    sync.Mutex
	local *lru.Cache[string, *rate.Limiter]
}

// NewUserLimiter 创建用户限流器
// r: 每秒产生的令牌数, burst: 令牌桶容量, redisClient 可为 nil
func NewUserLimiter(r float64, burst int, redisClient *redis.Client) *UserLimiter {
	cache, _ := lru.New[string, *rate.Limiter](10000)
	return &UserLimiter{
		redisClient: redisClient,
		rate:        r,
		burst:       burst,
		local:       cache,
	}
}

// Allow 是否放行 key 对应的请求
func (l *UserLimiter) Allow(ctx context.Context, key string) bool {
	if l.redisClient != nil {
		// 给 Redis 操作一个独立的短超时，防止 Redis 响应慢拖死接口
		redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		allowed, err := tokenBucketScript.Run(redisCtx, l.redisClient, []string{key},
			time.Now().UnixMilli(), l.burst, l.rate, 1).Int64()
		if err == nil {
			return allowed == 1
		}
		logger.Warn(ctx, "Redis 限流检查失败，降级为本地限流",
			logger.String("key", key),
			logger.ErrorField("error", err),
		)
	}
	return l.localLimiter(key).Allow()
}

func (l *UserLimiter) localLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.local.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(l.rate), l.burst)
	l.local.Add(key, lim)
	return lim
}

// UserRateLimitMiddleware 基于用户 UUID 的限流中间件，需要在 JWTAuthMiddleware 之后使用
func UserRateLimitMiddleware(limiter *UserLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userUUID, ok := GetUserUUID(c)
		if !ok || limiter == nil || limiter.rate <= 0 {
			c.Next()
			return
		}

		if !limiter.Allow(c.Request.Context(), rediskey.RateLimitUserKey(userUUID)) {
			logger.Warn(ctxmeta.FromGin(c), "用户请求被限流",
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			result.Abort(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			return
		}
		c.Next()
	}
}
