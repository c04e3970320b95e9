package objects

import "time"

// 任务运行状态
const (
	JobStatusRunning = 0
	JobStatusSuccess = 1
	JobStatusFailed  = 2
)

// SysJobLog 对应 sys_job_logs 表，每次任务执行一条
type SysJobLog struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	JobName     string     `gorm:"index;size:128" json:"job_name"`
	HandlerName string     `gorm:"size:128" json:"handler_name"`
	Source      string     `gorm:"size:32" json:"source"`
	Status      int        `json:"status"` // 0 Running, 1 Success, 2 Failed
	ErrorMsg    string     `gorm:"type:text" json:"error_msg"`
	DurationMs  int64      `json:"duration_ms"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

func (s SysJobLog) TableName() string {
	return "sys_job_logs"
}
