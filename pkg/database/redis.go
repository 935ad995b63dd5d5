package database

import (
	"context"

	"openmind/pkg/log"

	"github.com/go-redis/redis/v8"
)

// RDB 全局 Redis 客户端。两个用途：
// 1. 登出 token 黑名单
// 2. 仪表盘统计快照缓存（30 秒刷新一次）
var RDB *redis.Client

func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
