package repo

import (
	"context"

	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
	"github.com/iceymoss/go-newsfeed/pkg/transaction"
)

// JobRepo 任务执行记录
type JobRepo struct {
	tm *transaction.Manager
}

func NewJobRepo(tm *transaction.Manager) *JobRepo { return &JobRepo{tm: tm} }

// CreateLog 开始记录日志
func (r *JobRepo) CreateLog(ctx context.Context, log *objects.SysJobLog) error {
	return r.tm.DB(ctx).Create(log).Error
}

// UpdateLog 任务结束更新日志
func (r *JobRepo) UpdateLog(ctx context.Context, log *objects.SysJobLog) error {
	return r.tm.DB(ctx).Save(log).Error
}

// RecentLogs 按开始时间倒序返回最近的执行记录，jobName 为空时返回全部任务
func (r *JobRepo) RecentLogs(ctx context.Context, jobName string, limit int) ([]*objects.SysJobLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var list []*objects.SysJobLog
	q := r.tm.DB(ctx).Order("start_time DESC").Order("id DESC").Limit(limit)
	if jobName != "" {
		q = q.Where("job_name = ?", jobName)
	}
	err := q.Find(&list).Error
	return list, err
}
