package objects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewsArticle 对应数据库表 news_articles
// source_url 为去重键，数据库层面唯一
type NewsArticle struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" db:"id"`
	Headline    string    `gorm:"type:text;not null" json:"headline" db:"headline"`
	Summary     string    `gorm:"type:text;not null" json:"summary" db:"summary"`
	SourceName  string    `gorm:"size:255;not null" json:"source_name" db:"source_name"`
	SourceURL   string    `gorm:"size:1024;not null;uniqueIndex:idx_news_articles_source_url" json:"source_url" db:"source_url"`
	CategoryID  *string   `gorm:"size:36;index" json:"category_id" db:"category_id"`
	ImageURL    *string   `gorm:"type:text" json:"image_url" db:"image_url"`
	IsPinned    bool      `gorm:"not null" json:"is_pinned" db:"is_pinned"`
	IsBreaking  bool      `gorm:"not null" json:"is_breaking" db:"is_breaking"`
	IsPublished bool      `gorm:"not null" json:"is_published" db:"is_published"`
	PublishedAt time.Time `gorm:"index;not null" json:"published_at" db:"published_at"`
	AuthorID    *string   `gorm:"size:36" json:"author_id" db:"author_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at" db:"updated_at"`
}

// TableName 指定表名
func (NewsArticle) TableName() string {
	return "news_articles"
}

// BeforeCreate 未指定主键时生成 uuid
func (a *NewsArticle) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
