package config

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a global Redis client instance; nil means Redis is disabled.
var RedisClient *redis.Client

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       getEnvInt("REDIS_DB", 0),
	})
}

// PingRedis disables Redis when it is configured but unreachable.
func PingRedis(ctx context.Context) string {
	if RedisClient == nil {
		return "Redis not configured, caching disabled."
	}
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		RedisClient = nil
		return "Redis configured but not reachable, caching disabled."
	}
	return "Redis connection successful."
}

func RedisCtx() context.Context {
	return context.Background()
}
