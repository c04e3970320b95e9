package server

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/engine"
	"github.com/iceymoss/go-newsfeed/internal/feed"
	"github.com/iceymoss/go-newsfeed/internal/ingest"
	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
)

// Ingestor 抓取入口
type Ingestor interface {
	Run(ctx context.Context) (*ingest.RunSummary, error)
}

// FeedReader 公开新闻流查询
type FeedReader interface {
	ListArticles(ctx context.Context, f feed.Filters) ([]feed.Article, error)
	Breaking(ctx context.Context) ([]feed.Article, error)
	Pinned(ctx context.Context) ([]feed.Article, error)
	Categories(ctx context.Context) ([]objects.Category, error)
	ServiceLinks(ctx context.Context) ([]objects.ServiceLink, error)
}

// JobHistory 任务执行记录
type JobHistory interface {
	RecentLogs(ctx context.Context, jobName string, limit int) ([]*objects.SysJobLog, error)
}

// Deps 服务依赖，Feed/History/Static 可为空
type Deps struct {
	Ingestor  Ingestor
	Feed      FeedReader
	Scheduler *engine.Scheduler
	History   JobHistory
	Static    fs.FS
	Logger    *zap.Logger
	// FetchTimeout 单次手动抓取的超时
	FetchTimeout time.Duration
}

type Server struct {
	engine    *gin.Engine
	scheduler *engine.Scheduler
	ingestor  Ingestor
	feed      FeedReader
	history   JobHistory
	log       *zap.Logger
	timeout   time.Duration
	http      *http.Server
}

func NewServer(deps Deps) *Server {
	s := &Server{
		scheduler: deps.Scheduler,
		ingestor:  deps.Ingestor,
		feed:      deps.Feed,
		history:   deps.History,
		log:       deps.Logger,
		timeout:   deps.FetchTimeout,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Minute
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))

	functions := router.Group("/functions/v1", cors())
	{
		functions.OPTIONS("/fetch-news", preflight)
		functions.POST("/fetch-news", s.fetchNews)
		functions.GET("/fetch-news", s.fetchNews)
	}

	api := router.Group("/api", cors())
	{
		api.OPTIONS("/*path", preflight)

		if s.feed != nil {
			api.GET("/news", s.listNews)
			api.GET("/news/breaking", s.breakingNews)
			api.GET("/news/pinned", s.pinnedNews)
			api.GET("/categories", s.categories)
			api.GET("/service-links", s.serviceLinks)
		}

		if s.scheduler != nil {
			api.GET("/tasks", s.listTasks)
			api.POST("/tasks/:name/run", s.runTask)
			api.GET("/tasks/:name/logs", s.taskLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		// 为了安全，防止 API 404 返回了 HTML 页面
		if strings.HasPrefix(c.Request.URL.Path, "/api") || deps.Static == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "API not found"})
			return
		}

		http.FileServer(http.FS(deps.Static)).ServeHTTP(c.Writer, c.Request)
	})

	s.engine = router
	return s
}

// Handler 返回 http.Handler，便于测试
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 启动调度器和 web server，ctx 结束后优雅退出
func (s *Server) Run(ctx context.Context, addr string) error {
	if s.scheduler != nil {
		s.scheduler.Start()
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.stopScheduler()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	s.stopScheduler()
	if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) stopScheduler() {
	if s.scheduler == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.scheduler.Stop(ctx); err != nil {
		s.log.Warn("scheduler stop timed out", zap.Error(err))
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
