// Package network 网络探测类任务
package network

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/iceymoss/go-newsfeed/internal/core"
	"github.com/iceymoss/go-newsfeed/internal/tasks"
	"github.com/iceymoss/go-newsfeed/pkg/logger"

	"go.uber.org/zap"
)

const PingTaskName = "net:ping"

// DefaultPingURL 默认探测头条接口的可用性
const DefaultPingURL = "https://gnews.io"

// PingTask 结构体
type PingTask struct {
	client *http.Client
}

// 只要这个包被 import，任务就会注册，是否调度由 YAML 决定
func init() {
	tasks.Register(PingTaskName, NewPingTask)
}

func NewPingTask() core.Task {
	return &PingTask{}
}

func (t *PingTask) Identifier() string {
	return PingTaskName
}

func (t *PingTask) Run(ctx context.Context, params map[string]any) error {
	url, _ := params["url"].(string)
	if url == "" {
		url = DefaultPingURL
	}
	timeout := 5 * time.Second
	switch v := params["timeout"].(type) {
	case int:
		timeout = time.Duration(v) * time.Second
	case float64:
		timeout = time.Duration(v * float64(time.Second))
	}

	client := t.client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	log := logger.Named("ping").With(zap.String("url", url))
	log.Debug("pinging")

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		log.Warn("ping failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn("ping failed", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("status code %d", resp.StatusCode)
	}

	log.Info("ping ok", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	return nil
}
