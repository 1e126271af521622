package model

import "time"

// Profile holds the marketplace aggregates of a user. Identity fields belong to
// the identity provider and are not stored here.
type Profile struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"is_admin"`
	Rating         float64   `gorm:"not null;default:0" json:"rating"`
	RatingCount    int       `gorm:"not null;default:0" json:"rating_count"`
	CompletedTasks int       `gorm:"not null;default:0" json:"completed_tasks"`
	CreatedTasks   int       `gorm:"not null;default:0" json:"created_tasks"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
