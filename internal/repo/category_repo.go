package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
	"github.com/iceymoss/go-newsfeed/pkg/transaction"
)

// DefaultCategories 抓取 topic 映射到的分类
var DefaultCategories = []objects.Category{
	{Name: "Breaking News", Slug: "breaking-news", DisplayOrder: 0, IsActive: true},
	{Name: "India", Slug: "india", DisplayOrder: 1, IsActive: true},
	{Name: "World", Slug: "world", DisplayOrder: 2, IsActive: true},
	{Name: "Technology", Slug: "technology", DisplayOrder: 3, IsActive: true},
	{Name: "Business", Slug: "business", DisplayOrder: 4, IsActive: true},
	{Name: "Sports", Slug: "sports", DisplayOrder: 5, IsActive: true},
	{Name: "Health", Slug: "health", DisplayOrder: 6, IsActive: true},
}

type CategoryRepo struct {
	tm *transaction.Manager
}

func NewCategoryRepo(tm *transaction.Manager) *CategoryRepo {
	return &CategoryRepo{tm: tm}
}

// SeedDefaults 在一个事务内补齐缺失的默认分类，已存在的分类 (包括被停用的) 不做修改
// 返回新建的数量
func (r *CategoryRepo) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	err := r.tm.Execute(ctx, nil, func(ctx context.Context) error {
		created = 0
		tx := r.tm.DB(ctx)
		for _, def := range DefaultCategories {
			var existing objects.Category
			err := tx.Where("slug = ?", def.Slug).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			row := def
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	return created, err
}
