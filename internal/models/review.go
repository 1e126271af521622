package model

import "time"

type Review struct {
	ID                   string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID               string    `gorm:"size:36;not null;uniqueIndex:idx_review_task_reviewer" json:"task_id"`
	ReviewerID           string    `gorm:"size:36;not null;uniqueIndex:idx_review_task_reviewer" json:"reviewer_id"`
	RevieweeID           string    `gorm:"size:36;not null;index" json:"reviewee_id"`
	Rating               int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment              *string   `gorm:"size:1000" json:"comment,omitempty"`
	IsReviewingRequester bool      `gorm:"not null;default:false" json:"is_reviewing_requester"`
	CreatedAt            time.Time `json:"created_at"`
}
