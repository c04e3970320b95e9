package news

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/internal/core"
	"github.com/iceymoss/go-newsfeed/internal/ingest"
	"github.com/iceymoss/go-newsfeed/internal/provider/rss"
	"github.com/iceymoss/go-newsfeed/internal/tasks"
)

const RSSTaskName = "news:rss"

// RSSParams 任务参数
//
//	params:
//	  max: 10
//	  feeds:
//	    world: https://example.com/world.xml
type RSSParams struct {
	Feeds map[string]string
	Max   int
}

// RSSTask 从 YAML 配置的 RSS 源抓取，走与 GNews 相同的去重入库流程
type RSSTask struct {
	cfg   *conf.Config
	store ingest.ArticleStore
	lock  ingest.RunLock
	http  *http.Client
	log   *zap.Logger
	sleep ingest.Sleeper
}

// RSSDeps RSS 任务依赖
type RSSDeps struct {
	Config     *conf.Config
	Store      ingest.ArticleStore
	Lock       ingest.RunLock
	HTTPClient *http.Client
	Logger     *zap.Logger
	Sleep      ingest.Sleeper
}

func NewRSSTask(deps RSSDeps) *RSSTask {
	t := &RSSTask{
		cfg:   deps.Config,
		store: deps.Store,
		lock:  deps.Lock,
		http:  deps.HTTPClient,
		log:   deps.Logger,
		sleep: deps.Sleep,
	}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	if t.http == nil {
		t.http = &http.Client{Timeout: 15 * time.Second}
	}
	return t
}

// RegisterRSS 只注册实现，由 YAML jobs 决定是否调度
func RegisterRSS(deps RSSDeps) {
	tasks.Register(RSSTaskName, func() core.Task { return NewRSSTask(deps) })
}

func (t *RSSTask) Identifier() string {
	return RSSTaskName
}

func (t *RSSTask) Run(ctx context.Context, params map[string]any) error {
	p, err := parseRSSParams(params)
	if err != nil {
		return err
	}

	provider := rss.NewProvider(p.Feeds, p.Max, t.http)
	cfg := t.cfg
	if cfg == nil {
		cfg = &conf.Config{}
	}
	orchestrator := ingest.NewOrchestrator(ingest.Deps{
		Config:   cfg,
		Provider: provider,
		Store:    t.store,
		Lock:     t.lock,
		Logger:   t.log.With(zap.String("source", "rss")),
		Sleep:    t.sleep,
		Topics:   provider.Topics(),
		Validate: cfg.ValidateDatabase,
	})

	summary, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}
	logSummary(t.log, RSSTaskName, summary)
	return nil
}

func parseRSSParams(params map[string]any) (RSSParams, error) {
	p := RSSParams{Feeds: map[string]string{}}

	switch feeds := params["feeds"].(type) {
	case map[string]any:
		for topic, v := range feeds {
			if url, ok := v.(string); ok && url != "" {
				p.Feeds[topic] = url
			}
		}
	case map[string]string:
		for topic, url := range feeds {
			if url != "" {
				p.Feeds[topic] = url
			}
		}
	}
	if len(p.Feeds) == 0 {
		return p, fmt.Errorf("missing feeds")
	}

	switch n := params["max"].(type) {
	case int:
		p.Max = n
	case int64:
		p.Max = int(n)
	case float64:
		p.Max = int(n)
	}
	return p, nil
}
