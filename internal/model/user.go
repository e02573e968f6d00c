package model

import "time"

// User is an account that owns categories and tasks.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HashedPassword string     `gorm:"size:255;not null" json:"-"`
	FullName       *string    `gorm:"size:100" json:"full_name"`
	Phone          *string    `gorm:"size:20" json:"phone"`
	Bio            *string    `gorm:"type:text" json:"bio"`
	ProfilePicture *string    `gorm:"size:255" json:"profile_picture"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Categories     []Category `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tasks          []Task     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
