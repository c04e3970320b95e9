package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/core"
	"github.com/iceymoss/go-newsfeed/internal/tasks"
	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

const defaultJobTimeout = 65 * time.Minute

// JobLogStore 持久化每次执行记录
type JobLogStore interface {
	CreateLog(ctx context.Context, log *objects.SysJobLog) error
	UpdateLog(ctx context.Context, log *objects.SysJobLog) error
}

// Options 调度器配置
type Options struct {
	Location *time.Location
	Logger   *zap.Logger
	Logs     JobLogStore
	// Timeout 单次执行的超时
	Timeout time.Duration
}

type registeredJob struct {
	task    core.Task
	handler string
	params  map[string]any
	source  string
	entryID cron.EntryID
}

type Scheduler struct {
	cron    *cron.Cron
	Stats   *StatManager
	log     *zap.Logger
	logs    JobLogStore
	timeout time.Duration

	mu         sync.RWMutex
	registered map[string]*registeredJob
}

func NewScheduler(opts Options) *Scheduler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			// 上一次还没结束时跳过本次触发
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Stats:      NewStatManager(),
		log:        log,
		logs:       opts.Logs,
		timeout:    timeout,
		registered: make(map[string]*registeredJob),
	}
}

// AddJob 添加任务
func (s *Scheduler) AddJob(cronExpr, taskName, uniqueJobName string, params map[string]any, source string) error {
	// 1. 获取任务实现
	taskInstance, err := tasks.GetTask(taskName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registered[uniqueJobName]; exists {
		return fmt.Errorf("job %s already registered", uniqueJobName)
	}

	// 2. 加入 Cron
	entryID, err := s.cron.AddFunc(cronExpr, func() {
		s.runTaskWithStats(context.Background(), uniqueJobName)
	})
	if err != nil {
		return fmt.Errorf("invalid cron %q for %s: %w", cronExpr, uniqueJobName, err)
	}

	// 3. 初始化状态
	stat := &JobStats{
		Name:       uniqueJobName,
		Handler:    taskName,
		CronExpr:   cronExpr,
		Status:     StatusIdle,
		LastResult: "Pending",
		Source:     source,
	}
	if entry := s.cron.Entry(entryID); entry.Schedule != nil {
		stat.rawNext = entry.Schedule.Next(time.Now().In(s.cron.Location()))
		stat.NextRunTime = stat.rawNext.Format(timeLayout)
	}
	s.Stats.Set(uniqueJobName, stat)

	// 保存引用以便手动触发
	s.registered[uniqueJobName] = &registeredJob{
		task:    taskInstance,
		handler: taskName,
		params:  params,
		source:  source,
		entryID: entryID,
	}
	return nil
}

func (s *Scheduler) lookup(name string) (*registeredJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registered[name]
	return reg, ok
}

// RunNow 同步执行一次，任务正在运行时返回 RUN_IN_PROGRESS
func (s *Scheduler) RunNow(ctx context.Context, uniqueJobName string) error {
	if _, ok := s.lookup(uniqueJobName); !ok {
		return errors.New(xerr.REQUEST_PARAM_ERROR, "job not found")
	}
	return s.runTaskWithStats(ctx, uniqueJobName)
}

// ManualRun 手动触发，异步执行
func (s *Scheduler) ManualRun(uniqueJobName string) error {
	stat, ok := s.Stats.Get(uniqueJobName)
	if !ok {
		return errors.New(xerr.REQUEST_PARAM_ERROR, "job not found")
	}
	if stat.Status == StatusRunning {
		return errors.New(xerr.RUN_IN_PROGRESS, "job is already running")
	}
	go func() {
		_ = s.runTaskWithStats(context.Background(), uniqueJobName)
	}()
	return nil
}

// runTaskWithStats 执行并记录状态
func (s *Scheduler) runTaskWithStats(parent context.Context, name string) error {
	reg, ok := s.lookup(name)
	if !ok {
		return errors.New(xerr.REQUEST_PARAM_ERROR, "job not found")
	}

	start := time.Now()
	busy := false
	s.Stats.Update(name, func(stat *JobStats) {
		if stat.Status == StatusRunning {
			busy = true
			return
		}
		stat.Status = StatusRunning
		stat.LastRunTime = start.Format(timeLayout)
		stat.RunCount++
	})
	if busy {
		return errors.New(xerr.RUN_IN_PROGRESS, "job is already running")
	}

	log := s.log.With(zap.String("job", name), zap.String("handler", reg.handler))
	log.Info("job started")

	jobLog := &objects.SysJobLog{
		JobName:     name,
		HandlerName: reg.handler,
		Source:      reg.source,
		Status:      objects.JobStatusRunning,
		StartTime:   start,
	}
	s.saveLog(log, jobLog, true)

	// 执行 (带超时控制)
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	err := reg.task.Run(ctx, reg.params)

	end := time.Now()
	jobLog.EndTime = &end
	jobLog.DurationMs = end.Sub(start).Milliseconds()

	next := s.cron.Entry(reg.entryID).Next

	// 更新结束状态
	s.Stats.Update(name, func(stat *JobStats) {
		if err != nil {
			stat.LastResult = fmt.Sprintf("Error: %v", err)
			stat.Status = StatusError
		} else {
			stat.LastResult = "Success"
			stat.Status = StatusIdle
		}
		if !next.IsZero() {
			stat.rawNext = next
			stat.NextRunTime = next.Format(timeLayout)
		}
	})

	if err != nil {
		jobLog.Status = objects.JobStatusFailed
		jobLog.ErrorMsg = err.Error()
		log.Error("job failed", zap.Duration("elapsed", end.Sub(start)), zap.Error(err))
	} else {
		jobLog.Status = objects.JobStatusSuccess
		log.Info("job finished", zap.Duration("elapsed", end.Sub(start)))
	}
	s.saveLog(log, jobLog, false)
	return err
}

// saveLog 执行记录写入失败不影响任务本身
func (s *Scheduler) saveLog(log *zap.Logger, jobLog *objects.SysJobLog, create bool) {
	if s.logs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if create {
		err = s.logs.CreateLog(ctx, jobLog)
	} else {
		err = s.logs.UpdateLog(ctx, jobLog)
	}
	if err != nil {
		log.Warn("save job log failed", zap.Error(err))
	}
}

// Jobs 返回所有任务的状态
func (s *Scheduler) Jobs() []JobStats {
	return s.Stats.GetAll()
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
