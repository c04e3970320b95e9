package objects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceLink 对应 service_links 表，首页快捷入口
type ServiceLink struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" db:"id"`
	Title        string    `gorm:"size:255;not null" json:"title" db:"title"`
	Description  *string   `gorm:"type:text" json:"description" db:"description"`
	URL          string    `gorm:"type:text;not null" json:"url" db:"url"`
	Icon         *string   `gorm:"size:64" json:"icon" db:"icon"`
	DisplayOrder int       `gorm:"not null" json:"display_order" db:"display_order"`
	IsActive     bool      `gorm:"not null" json:"is_active" db:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at" db:"updated_at"`
}

func (ServiceLink) TableName() string {
	return "service_links"
}

func (l *ServiceLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
