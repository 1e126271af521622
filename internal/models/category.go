package model

import "time"

// Category groups tasks. TaskCount is computed on read and never stored.
type Category struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `gorm:"size:50" json:"icon,omitempty"`
	Color       *string   `gorm:"size:20" json:"color,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedBy   string    `gorm:"size:36;not null" json:"created_by"`
	TaskCount   int64     `gorm:"->;-:migration" json:"task_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
