// Package feed 提供公开新闻流的只读查询
package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
)

const (
	ListLimit     = 50
	BreakingLimit = 5
	PinnedLimit   = 3
)

// Filters 列表筛选条件
type Filters struct {
	Category string // 分类 slug，空或 all 表示全部
	Search   string // 标题或摘要模糊匹配
	DateFrom *time.Time
	DateTo   *time.Time
}

// Article 带分类信息的文章
type Article struct {
	objects.NewsArticle
	CategoryName *string `json:"category_name" db:"category_name"`
	CategorySlug *string `json:"category_slug" db:"category_slug"`
}

// Reader 基于 sqlx 的只读查询
type Reader struct {
	db       *sqlx.DB
	builder  sq.StatementBuilderType
	postgres bool
}

// NewReader driver 决定占位符与模糊匹配的写法
func NewReader(db *sqlx.DB, driver string) *Reader {
	postgres := driver == "" || driver == "postgres"
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if postgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Reader{db: db, builder: builder, postgres: postgres}
}

func (r *Reader) articleSelect() sq.SelectBuilder {
	return r.builder.
		Select("a.*", "c.name AS category_name", "c.slug AS category_slug").
		From("news_articles a").
		LeftJoin("categories c ON c.id = a.category_id").
		Where(sq.Eq{"a.is_published": true})
}

// ListQuery 构建文章列表查询
// 分类 slug 不存在时不按分类过滤
func (r *Reader) ListQuery(f Filters, categoryID string) sq.SelectBuilder {
	q := r.articleSelect()
	if categoryID != "" {
		q = q.Where(sq.Eq{"a.category_id": categoryID})
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where(r.searchClause(search))
	}
	if f.DateFrom != nil {
		q = q.Where(sq.GtOrEq{"a.published_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(sq.LtOrEq{"a.published_at": *f.DateTo})
	}
	return q.OrderBy("a.is_pinned DESC", "a.published_at DESC").Limit(ListLimit)
}

func (r *Reader) searchClause(search string) sq.Sqlizer {
	pattern := "%" + search + "%"
	if r.postgres {
		return sq.Or{sq.ILike{"a.headline": pattern}, sq.ILike{"a.summary": pattern}}
	}
	pattern = strings.ToLower(pattern)
	return sq.Or{
		sq.Expr("LOWER(a.headline) LIKE ?", pattern),
		sq.Expr("LOWER(a.summary) LIKE ?", pattern),
	}
}

// ListArticles 公开文章列表，置顶优先，其余按发布时间倒序
func (r *Reader) ListArticles(ctx context.Context, f Filters) ([]Article, error) {
	categoryID, err := r.categoryID(ctx, f.Category)
	if err != nil {
		return nil, err
	}
	return r.selectArticles(ctx, r.ListQuery(f, categoryID))
}

// BreakingQuery 突发新闻
func (r *Reader) BreakingQuery() sq.SelectBuilder {
	return r.articleSelect().Where(sq.Eq{"a.is_breaking": true}).OrderBy("a.published_at DESC").Limit(BreakingLimit)
}

func (r *Reader) Breaking(ctx context.Context) ([]Article, error) {
	return r.selectArticles(ctx, r.BreakingQuery())
}

// PinnedQuery 置顶新闻
func (r *Reader) PinnedQuery() sq.SelectBuilder {
	return r.articleSelect().Where(sq.Eq{"a.is_pinned": true}).OrderBy("a.published_at DESC").Limit(PinnedLimit)
}

func (r *Reader) Pinned(ctx context.Context) ([]Article, error) {
	return r.selectArticles(ctx, r.PinnedQuery())
}

// Categories 启用的分类
func (r *Reader) Categories(ctx context.Context) ([]objects.Category, error) {
	query, args, err := r.builder.Select("*").From("categories").
		Where(sq.Eq{"is_active": true}).OrderBy("display_order ASC").ToSql()
	if err != nil {
		return nil, err
	}
	list := []objects.Category{}
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return list, nil
}

// ServiceLinks 启用的快捷入口
func (r *Reader) ServiceLinks(ctx context.Context) ([]objects.ServiceLink, error) {
	query, args, err := r.builder.Select("*").From("service_links").
		Where(sq.Eq{"is_active": true}).OrderBy("display_order ASC").ToSql()
	if err != nil {
		return nil, err
	}
	list := []objects.ServiceLink{}
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("select service links: %w", err)
	}
	return list, nil
}

func (r *Reader) categoryID(ctx context.Context, slug string) (string, error) {
	if slug == "" || slug == "all" {
		return "", nil
	}
	query, args, err := r.builder.Select("id").From("categories").Where(sq.Eq{"slug": slug}).Limit(1).ToSql()
	if err != nil {
		return "", err
	}
	var id string
	err = r.db.GetContext(ctx, &id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup category %s: %w", slug, err)
	}
	return id, nil
}

func (r *Reader) selectArticles(ctx context.Context, q sq.SelectBuilder) ([]Article, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	list := []Article{}
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}
	return list, nil
}
