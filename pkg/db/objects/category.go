package objects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category 对应 categories 表，由后台维护，抓取任务只读
type Category struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" db:"id"`
	Name         string    `gorm:"size:128;not null" json:"name" db:"name"`
	Slug         string    `gorm:"size:128;not null;uniqueIndex" json:"slug" db:"slug"`
	Description  *string   `gorm:"type:text" json:"description" db:"description"`
	Icon         *string   `gorm:"size:64" json:"icon" db:"icon"`
	Color        *string   `gorm:"size:32" json:"color" db:"color"`
	DisplayOrder int       `gorm:"not null" json:"display_order" db:"display_order"`
	IsActive     bool      `gorm:"not null" json:"is_active" db:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at" db:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
