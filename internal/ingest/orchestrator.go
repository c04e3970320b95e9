// Package ingest 从头条接口抓取新闻，按 source_url 去重后入库
package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/internal/provider/gnews"
	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/logger"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

const (
	// DefaultTopicDelay 两次接口调用之间的间隔，避免触发限流
	DefaultTopicDelay = 500 * time.Millisecond

	summaryMaxChars = 500
)

// ErrDuplicateArticle 插入时 source_url 已存在 (并发抓取竞争失败)
var ErrDuplicateArticle = stderrors.New("article with this source_url already exists")

// HeadlineProvider 头条数据源
type HeadlineProvider interface {
	TopHeadlines(ctx context.Context, topic string) ([]gnews.Article, error)
}

// ArticleStore 抓取任务使用的存储操作
type ArticleStore interface {
	// ActiveCategoryIDs 返回启用分类 slug -> id
	ActiveCategoryIDs(ctx context.Context) (map[string]string, error)
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)
	// Insert 唯一索引冲突时返回 ErrDuplicateArticle
	Insert(ctx context.Context, article *objects.NewsArticle) error
}

// RunLock 防止多个抓取任务重叠执行
type RunLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Sleeper 可注入的等待函数，ctx 取消时提前返回
type Sleeper func(ctx context.Context, d time.Duration) error

// Deps 编排器依赖
type Deps struct {
	Config   *conf.Config
	Provider HeadlineProvider
	Store    ArticleStore
	Lock     RunLock
	Logger   *zap.Logger
	Sleep    Sleeper
	Now      func() time.Time

	// Topics 覆盖配置中的 topic 列表
	Topics []string
	// Validate 覆盖默认的配置检查 (Config.Validate)
	Validate func() error
}

// Orchestrator 按 topic 顺序抓取并入库
type Orchestrator struct {
	cfg      *conf.Config
	provider HeadlineProvider
	store    ArticleStore
	lock     RunLock
	log      *zap.Logger
	sleep    Sleeper
	now      func() time.Time
	topicSet []string
	validate func() error
}

// NewOrchestrator 组装编排器，未提供的 Sleep/Now/Logger 使用默认实现
func NewOrchestrator(deps Deps) *Orchestrator {
	o := &Orchestrator{
		cfg:      deps.Config,
		provider: deps.Provider,
		store:    deps.Store,
		lock:     deps.Lock,
		log:      deps.Logger,
		sleep:    deps.Sleep,
		now:      deps.Now,
		topicSet: deps.Topics,
		validate: deps.Validate,
	}
	if o.cfg == nil {
		o.cfg = &conf.Config{}
	}
	if o.validate == nil {
		o.validate = o.cfg.Validate
	}
	if o.log == nil {
		o.log = logger.Named("ingest")
	}
	if o.sleep == nil {
		o.sleep = SleepContext
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Run 执行一次完整抓取
// 只有配置错误、分类加载失败、运行锁冲突或 ctx 取消会返回 error；
// 单个 topic 或单篇文章的失败记录在 RunSummary.Errors 中
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	if err := o.validate(); err != nil {
		o.log.Error("ingestion misconfigured", zap.Error(err))
		return nil, err
	}
	if o.provider == nil || o.store == nil {
		return nil, errors.New(xerr.CONFIG_ERROR, "ingestion dependencies not configured")
	}

	if o.lock != nil {
		release, err := o.lock.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	categories, err := o.store.ActiveCategoryIDs(ctx)
	if err != nil {
		return nil, errors.Wrap(xerr.DB_ERROR, "failed to fetch categories", err)
	}

	topics := o.topics()
	o.log.Info("starting news fetch", zap.Strings("topics", topics), zap.Int("active_categories", len(categories)))

	summary := &RunSummary{}
	for i, topic := range topics {
		if err := ctx.Err(); err != nil {
			o.log.Warn("news fetch cancelled", zap.String("next_topic", topic), zap.Error(err))
			return summary, err
		}

		o.ingestTopic(ctx, topic, categories, summary)

		if i < len(topics)-1 {
			if err := o.sleep(ctx, o.topicDelay()); err != nil {
				o.log.Warn("news fetch cancelled", zap.Error(err))
				return summary, err
			}
		}
	}

	o.log.Info("news fetch complete",
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}

func (o *Orchestrator) ingestTopic(ctx context.Context, topic string, categories map[string]string, summary *RunSummary) {
	log := o.log.With(zap.String("topic", topic))
	log.Debug("fetching topic")

	articles, err := o.provider.TopHeadlines(ctx, topic)
	if err != nil {
		log.Error("headline provider failed", zap.Error(err))
		summary.addTopicError(topic, err)
		return
	}
	if len(articles) == 0 {
		log.Info("no articles found for topic")
		return
	}

	log.Info("articles found", zap.Int("count", len(articles)))
	categoryID := ResolveCategoryID(topic, categories)

	for _, article := range articles {
		exists, err := o.store.ExistsBySourceURL(ctx, article.URL)
		if err != nil {
			log.Error("lookup existing article failed", zap.String("source_url", article.URL), zap.Error(err))
			summary.addArticleError(topic, article.URL, fmt.Errorf("lookup %s: %w", article.URL, err))
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}

		row := BuildArticle(article, topic, categoryID, o.now())
		if err := o.store.Insert(ctx, row); err != nil {
			if stderrors.Is(err, ErrDuplicateArticle) {
				summary.Skipped++
				continue
			}
			log.Error("failed to insert article", zap.String("source_url", article.URL), zap.Error(err))
			summary.addArticleError(topic, article.URL, err)
			continue
		}
		summary.Inserted++
	}
}

func (o *Orchestrator) topics() []string {
	if len(o.topicSet) > 0 {
		return o.topicSet
	}
	if len(o.cfg.Ingest.Topics) > 0 {
		return o.cfg.Ingest.Topics
	}
	return DefaultTopics
}

func (o *Orchestrator) topicDelay() time.Duration {
	if o.cfg.Ingest.TopicDelay > 0 {
		return o.cfg.Ingest.TopicDelay
	}
	return DefaultTopicDelay
}

// BuildArticle 将接口文章转换为待入库的行
func BuildArticle(a gnews.Article, topic string, categoryID *string, now time.Time) *objects.NewsArticle {
	var imageURL *string
	if a.Image != "" {
		image := a.Image
		imageURL = &image
	}

	return &objects.NewsArticle{
		Headline:    a.Title,
		Summary:     Summarize(a.Description, a.Content),
		SourceName:  a.Source.Name,
		SourceURL:   a.URL,
		CategoryID:  categoryID,
		ImageURL:    imageURL,
		IsPinned:    false,
		IsBreaking:  topic == BreakingTopic,
		IsPublished: true,
		PublishedAt: publishedAt(a.PublishedAt, now),
	}
}

// Summarize 优先使用描述，其次截取正文前 500 个字符，都没有则为空
func Summarize(description, content string) string {
	if description != "" {
		return description
	}
	if utf8.RuneCountInString(content) <= summaryMaxChars {
		return content
	}
	return string([]rune(content)[:summaryMaxChars])
}

func publishedAt(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return now
	}
	return t
}

// SleepContext 等待 d 或 ctx 结束
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
