package db

import (
	"github.com/go-redis/redis/v8"

	"github.com/iceymoss/go-newsfeed/internal/conf"
)

// NewRedis 创建 redis 客户端，未配置地址时返回 nil
func NewRedis(cfg conf.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
