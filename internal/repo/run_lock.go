package repo

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/ingest"
	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

const (
	// FetchLockKey 抓取任务的分布式锁
	FetchLockKey = "newsfeed:lock:fetch-news"

	defaultLockTTL = 10 * time.Minute
)

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock 基于 SET NX 的运行锁，防止多个实例同时抓取
type RedisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    *zap.Logger
}

var _ ingest.RunLock = (*RedisRunLock)(nil)

func NewRedisRunLock(client *redis.Client, key string, ttl time.Duration, log *zap.Logger) *RedisRunLock {
	if key == "" {
		key = FetchLockKey
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisRunLock{client: client, key: key, ttl: ttl, log: log}
}

// Acquire 获取锁，已被占用时返回 RUN_IN_PROGRESS
func (l *RedisRunLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(xerr.SERVER_COMMON_ERROR, "acquire run lock", err)
	}
	if !ok {
		return nil, errors.New(xerr.RUN_IN_PROGRESS, "news fetch already running")
	}

	release := func() {
		// 调用方的 ctx 可能已取消，释放锁使用独立的超时
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("release run lock failed", zap.String("key", l.key), zap.Error(err))
		}
	}
	return release, nil
}

// LocalRunLock 单实例内的运行锁，未配置 redis 时使用
// 定时任务与 HTTP 触发共用同一个编排器实例，持有同一把锁
type LocalRunLock struct {
	mu sync.Mutex
}

var _ ingest.RunLock = (*LocalRunLock)(nil)

func NewLocalRunLock() *LocalRunLock {
	return &LocalRunLock{}
}

// Acquire 不等待，已被占用时返回 RUN_IN_PROGRESS
func (l *LocalRunLock) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.mu.TryLock() {
		return nil, errors.New(xerr.RUN_IN_PROGRESS, "news fetch already running")
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}
