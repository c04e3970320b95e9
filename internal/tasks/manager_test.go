package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/internal/core"
)

type noopTask struct{}

func (noopTask) Run(context.Context, map[string]any) error { return nil }
func (noopTask) Identifier() string                        { return "test:noop" }

type addCall struct {
	cron, task, name, source string
}

type recordingScheduler struct {
	calls []addCall
}

func (s *recordingScheduler) AddJob(cronExpr, taskName, uniqueJobName string, _ map[string]any, source string) error {
	if _, err := GetTask(taskName); err != nil {
		return err
	}
	s.calls = append(s.calls, addCall{cronExpr, taskName, uniqueJobName, source})
	return nil
}

func TestApplyConfigJobs(t *testing.T) {
	Register("test:noop", func() core.Task { return noopTask{} })
	sched := &recordingScheduler{}

	loaded := ApplyConfigJobs(sched, []conf.JobConfig{
		{Name: "test:noop", Cron: "@every 1m", Enable: true},
		{Name: "noop-hourly", Handler: "test:noop", Cron: "@every 1h", Enable: true},
		{Name: "disabled", Handler: "test:noop", Cron: "@every 1h", Enable: false},
		{Name: "unknown", Cron: "@every 1h", Enable: true},
	}, zap.NewNop())

	assert.Equal(t, 2, loaded)
	assert.Equal(t, []addCall{
		{"@every 1m", "test:noop", "test:noop", "YAML"},
		{"@every 1h", "test:noop", "noop-hourly", "YAML"},
	}, sched.calls)
}

func TestRegisterAuto(t *testing.T) {
	RegisterAuto("test:auto", "@every 5m", func() core.Task { return noopTask{} }, map[string]any{"k": "v"})
	assert.Contains(t, Names(), "test:auto")

	sched := &recordingScheduler{}
	ApplyAutoJobs(sched, zap.NewNop())
	assert.Contains(t, sched.calls, addCall{"@every 5m", "test:auto", "test:auto", "SYSTEM"})
}
