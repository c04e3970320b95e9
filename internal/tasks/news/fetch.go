// Package news 把新闻抓取挂到任务调度器上
package news

import (
	"context"

	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/core"
	"github.com/iceymoss/go-newsfeed/internal/ingest"
	"github.com/iceymoss/go-newsfeed/internal/tasks"
)

const FetchTaskName = "news:fetch"

// Runner 一次完整的抓取
type Runner interface {
	Run(ctx context.Context) (*ingest.RunSummary, error)
}

// FetchTask 定时执行 GNews 抓取
type FetchTask struct {
	runner Runner
	log    *zap.Logger
}

func NewFetchTask(runner Runner, log *zap.Logger) *FetchTask {
	if log == nil {
		log = zap.NewNop()
	}
	return &FetchTask{runner: runner, log: log}
}

// RegisterFetch 注册为自启动任务，cron 为空时只注册不自动调度
func RegisterFetch(runner Runner, cron string, log *zap.Logger) {
	creator := func() core.Task { return NewFetchTask(runner, log) }
	if cron == "" {
		tasks.Register(FetchTaskName, creator)
		return
	}
	tasks.RegisterAuto(FetchTaskName, cron, creator, nil)
}

func (t *FetchTask) Identifier() string {
	return FetchTaskName
}

// Run 部分 topic 或文章失败不算任务失败，只记录日志
func (t *FetchTask) Run(ctx context.Context, _ map[string]any) error {
	summary, err := t.runner.Run(ctx)
	if err != nil {
		return err
	}
	logSummary(t.log, FetchTaskName, summary)
	return nil
}

func logSummary(log *zap.Logger, task string, summary *ingest.RunSummary) {
	fields := []zap.Field{
		zap.String("task", task),
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped),
	}
	if msgs := summary.Messages(); len(msgs) > 0 {
		log.Warn("news fetch finished with errors", append(fields, zap.Strings("errors", msgs))...)
		return
	}
	log.Info("news fetch finished", fields...)
}
