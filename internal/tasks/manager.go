package tasks

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/internal/core"
	"github.com/iceymoss/go-newsfeed/pkg/constants"
)

type Scheduler interface {
	AddJob(cronExpr, taskName, uniqueJobName string, params map[string]any, source string) error
}

// ApplyAutoJobs 把代码中注册的自启动任务加入调度器
func ApplyAutoJobs(sched Scheduler, log *zap.Logger) {
	mu.RLock()
	jobs := make([]*AutoJob, len(autoJobs))
	copy(jobs, autoJobs)
	mu.RUnlock()

	for _, job := range jobs {
		// 调用调度器添加任务
		err := sched.AddJob(job.Cron, job.Name, job.Name, job.Params, string(constants.TaskTypeSYSTEM))
		if err != nil {
			log.Error("load auto job failed", zap.String("job", job.Name), zap.Error(err))
		} else {
			log.Info("auto job loaded", zap.String("job", job.Name), zap.String("cron", job.Cron))
		}
	}
}

// ApplyConfigJobs 注册配置文件中启用的任务，返回成功数量
func ApplyConfigJobs(sched Scheduler, jobs []conf.JobConfig, log *zap.Logger) int {
	loaded := 0
	for _, job := range jobs {
		if !job.Enable {
			continue
		}
		handler := job.Handler
		if handler == "" {
			handler = job.Name
		}
		err := sched.AddJob(job.Cron, handler, job.Name, job.Params, string(constants.TaskTypeYAML))
		if err != nil {
			log.Warn("schedule job failed", zap.String("job", job.Name), zap.Error(err))
			continue
		}
		log.Info("job scheduled", zap.String("job", job.Name), zap.String("cron", job.Cron))
		loaded++
	}
	return loaded
}

// AutoJob 定义一个“自启动任务”的结构
type AutoJob struct {
	Name    string           // 任务唯一标识
	Cron    string           // Cron 表达式
	Creator core.TaskCreator // 构造函数
	Params  map[string]any   // 默认参数
}

var (
	registry = make(map[string]core.TaskCreator) // 普通任务注册（供 Config 调用）
	autoJobs = make([]*AutoJob, 0)               // 自动任务列表（供代码直接启动）
	mu       sync.RWMutex
)

// Register 供 Config 使用
func Register(name string, creator core.TaskCreator) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = creator
}

// RegisterAuto 注册并自动启动
func RegisterAuto(name string, cron string, creator core.TaskCreator, defaultParams map[string]any) {
	mu.Lock()
	defer mu.Unlock()

	// 1. 先注册到普通池子（这样 Web 界面也能手动触发）
	registry[name] = creator

	// 2. 加入自动启动列表
	autoJobs = append(autoJobs, &AutoJob{
		Name:    name,
		Cron:    cron,
		Creator: creator,
		Params:  defaultParams,
	})
}

func GetTask(name string) (core.Task, error) {
	mu.RLock()
	defer mu.RUnlock()
	creator, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("task implementation '%s' not found", name)
	}
	return creator(), nil
}

// Names 已注册的任务实现
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
