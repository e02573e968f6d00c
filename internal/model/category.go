package model

import "time"

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

// Category groups tasks under a user-defined label.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_category_name" json:"user_id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex:idx_user_category_name" json:"name"`
	Color     string    `gorm:"size:7;default:#3B82F6" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	Tasks     []Task    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
}
