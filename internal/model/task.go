package model

import (
	"strings"
	"time"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority matches raw case-insensitively against the known priorities.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	return p, p.Valid()
}

// Task represents a single unit of work.
// CompletedAt is set exactly when IsCompleted is true.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint      `gorm:"index" json:"category_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	IsCompleted bool       `gorm:"default:false;index" json:"is_completed"`
	Priority    Priority   `gorm:"size:10;default:medium" json:"priority"`
	DueDate     *Date      `gorm:"index" json:"due_date"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// SetCompleted flips the completion flag and keeps CompletedAt consistent with it.
func (t *Task) SetCompleted(done bool, now time.Time) {
	t.IsCompleted = done
	if done {
		t.CompletedAt = &now
		return
	}
	t.CompletedAt = nil
}
