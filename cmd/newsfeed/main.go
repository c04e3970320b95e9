package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/internal/engine"
	"github.com/iceymoss/go-newsfeed/internal/feed"
	"github.com/iceymoss/go-newsfeed/internal/ingest"
	"github.com/iceymoss/go-newsfeed/internal/provider/gnews"
	"github.com/iceymoss/go-newsfeed/internal/repo"
	"github.com/iceymoss/go-newsfeed/internal/server"
	"github.com/iceymoss/go-newsfeed/internal/tasks"
	"github.com/iceymoss/go-newsfeed/internal/tasks/news"
	// import anonymously to register tasks to the list
	_ "github.com/iceymoss/go-newsfeed/internal/tasks/network"
	"github.com/iceymoss/go-newsfeed/pkg/db"
	"github.com/iceymoss/go-newsfeed/pkg/logger"
	"github.com/iceymoss/go-newsfeed/pkg/transaction"
	"github.com/iceymoss/go-newsfeed/pkg/utils"
	"github.com/iceymoss/go-newsfeed/web"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path, empty for env only")
	flag.Parse()
	defer logger.Sync()

	// .env 不存在时只依赖进程环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("❌ .env error", zap.Error(err))
	}

	cfg, err := conf.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("❌ LoadConfig error", zap.Error(err))
	}
	// GNews key 缺失时服务仍然启动，抓取接口返回失败
	if err := cfg.Validate(); err != nil {
		logger.Warn("ingestion misconfigured", zap.Error(err))
	}

	log := logger.Named("newsfeed")

	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		logger.Fatal("❌ database error", zap.Error(err))
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(dbConn, cfg.Database.Driver, log); err != nil {
			logger.Fatal("❌ migrate error", zap.Error(err))
		}
	}

	tm := transaction.NewManager(dbConn)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.SeedCategories {
		created, err := repo.NewCategoryRepo(tm).SeedDefaults(ctx)
		if err != nil {
			logger.Fatal("❌ seed categories error", zap.Error(err))
		}
		log.Info("default categories ensured", zap.Int("created", created))
	}

	reader, err := db.OpenReader(cfg.Database, dbConn)
	if err != nil {
		logger.Fatal("❌ read database error", zap.Error(err))
	}
	defer reader.Close()

	// 多实例部署用 redis 锁，单实例退回进程内锁
	var lock ingest.RunLock = repo.NewLocalRunLock()
	if rdb := db.NewRedis(cfg.Redis); rdb != nil {
		defer rdb.Close()
		lock = repo.NewRedisRunLock(rdb, repo.FetchLockKey, cfg.Redis.LockTTL, log)
	}

	articles := repo.NewArticleRepo(tm)
	orchestrator := ingest.NewOrchestrator(ingest.Deps{
		Config:   cfg,
		Provider: gnews.NewClient(cfg.GNews, nil),
		Store:    articles,
		Lock:     lock,
		Logger:   logger.Named("ingest"),
		Now:      utils.NowInIndia,
	})

	news.RegisterFetch(orchestrator, cfg.Ingest.Cron, logger.Named("task"))
	news.RegisterRSS(news.RSSDeps{
		Config: cfg,
		Store:  articles,
		Lock:   lock,
		Logger: logger.Named("task"),
	})

	jobs := repo.NewJobRepo(tm)
	scheduler := engine.NewScheduler(engine.Options{
		Location: utils.LoadLocationOr(cfg.Ingest.Timezone, utils.IndiaLocation),
		Logger:   logger.Named("scheduler"),
		Logs:     jobs,
		Timeout:  cfg.Ingest.Timeout,
	})
	tasks.ApplyAutoJobs(scheduler, log)
	tasks.ApplyConfigJobs(scheduler, cfg.Jobs, log)

	srv := server.NewServer(server.Deps{
		Ingestor:     orchestrator,
		Feed:         feed.NewReader(reader, cfg.Database.Driver),
		Scheduler:    scheduler,
		History:      jobs,
		Static:       web.StaticFiles,
		Logger:       logger.Named("http"),
		FetchTimeout: cfg.Ingest.Timeout,
	})

	port := cfg.Server.Port
	if port == "" {
		port = ":8080"
	}

	log.Info("🌐 Dashboard running", zap.String("addr", "http://localhost"+port))
	if err := srv.Run(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("❌ Server error", zap.Error(err))
	}
	log.Info("server stopped")
}
