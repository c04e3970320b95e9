package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/iceymoss/go-newsfeed/internal/ingest"
	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
	"github.com/iceymoss/go-newsfeed/pkg/transaction"
)

// postgres unique_violation
const pgUniqueViolation = "23505"

// ArticleRepo 抓取任务使用的文章存储
type ArticleRepo struct {
	tm *transaction.Manager
}

var _ ingest.ArticleStore = (*ArticleRepo)(nil)

func NewArticleRepo(tm *transaction.Manager) *ArticleRepo {
	return &ArticleRepo{tm: tm}
}

// ActiveCategoryIDs 一次性加载启用分类 slug -> id
func (r *ArticleRepo) ActiveCategoryIDs(ctx context.Context) (map[string]string, error) {
	var list []objects.Category
	err := r.tm.DB(ctx).Select("id", "slug").Where("is_active = ?", true).Find(&list).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(list))
	for _, c := range list {
		out[c.Slug] = c.ID
	}
	return out, nil
}

// ExistsBySourceURL 按去重键检查文章是否已存在
func (r *ArticleRepo) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	var count int64
	err := r.tm.DB(ctx).Model(&objects.NewsArticle{}).Where("source_url = ?", sourceURL).Limit(1).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert 新增文章，唯一索引冲突转换为 ingest.ErrDuplicateArticle
func (r *ArticleRepo) Insert(ctx context.Context, article *objects.NewsArticle) error {
	err := r.tm.DB(ctx).Create(article).Error
	if isUniqueViolation(err) {
		return ingest.ErrDuplicateArticle
	}
	return err
}

// FindBySourceURL 按 source_url 查询文章
func (r *ArticleRepo) FindBySourceURL(ctx context.Context, sourceURL string) (*objects.NewsArticle, error) {
	var article objects.NewsArticle
	if err := r.tm.DB(ctx).Where("source_url = ?", sourceURL).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
