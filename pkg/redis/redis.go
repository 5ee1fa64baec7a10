package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CommunityBoard/config"

	"github.com/redis/go-redis/v9"
)

var global *redis.Client

// Client 返回全局 Redis 客户端（未初始化时为 nil）
func Client() *redis.Client { return global }

// ReplaceGlobal 设置全局 Redis 客户端
func ReplaceGlobal(c *redis.Client) { global = c }

// Build 创建 Redis 客户端并 Ping 校验
func Build(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping 失败: %w", err)
	}
	return client, nil
}

// TryLock 基于 SETNX 的简单互斥锁，返回的 unlock 只删除自己持有的锁。
func TryLock(ctx context.Context, client *redis.Client, key, owner string, ttl time.Duration) (bool, func(), error) {
	ok, err := client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil || !ok {
		return false, func() {}, err
	}
	unlock := func() {
		_ = unlockScript.Run(context.Background(), client, []string{key}, owner).Err()
	}
	return true, unlock, nil
}

var unlockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)
