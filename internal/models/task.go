package model

import (
	"time"

	"task-market.com/task-market/internal/constants"
)

type Task struct {
	ID                string               `gorm:"primaryKey;size:36" json:"id"`
	Title             string               `gorm:"not null" json:"title"`
	Description       string               `gorm:"not null" json:"description"`
	CategoryID        *string              `gorm:"size:36;index" json:"category_id,omitempty"`
	Price             float64              `gorm:"not null" json:"price"`
	Location          *string              `json:"location,omitempty"`
	Deadline          *time.Time           `json:"deadline,omitempty"`
	IsUrgent          bool                 `gorm:"not null;default:false" json:"is_urgent"`
	IsRemote          bool                 `gorm:"not null;default:false" json:"is_remote"`
	EstimatedHours    *float64             `json:"estimated_hours,omitempty"`
	Status            constants.TaskStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RequesterID       string               `gorm:"size:36;not null;index" json:"requester_id"`
	AssigneeID        *string              `gorm:"size:36;index" json:"assignee_id,omitempty"`
	ApplicationsCount int                  `gorm:"not null;default:0" json:"applications_count"`
	RefundRequired    bool                 `gorm:"not null;default:false" json:"refund_required"`
	CompletedBy       *string              `gorm:"size:36" json:"completed_by,omitempty"`
	CancelledBy       *string              `gorm:"size:36" json:"cancelled_by,omitempty"`
	Version           uint                 `gorm:"not null;default:1" json:"version"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	CompletedAt       *time.Time           `json:"completed_at,omitempty"`
	CancelledAt       *time.Time           `json:"cancelled_at,omitempty"`
}

func (t *Task) IsAssignee(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// CounterParty returns the other participant, or "" when there is none.
func (t *Task) CounterParty(userID string) string {
	if t.RequesterID == userID {
		if t.AssigneeID != nil {
			return *t.AssigneeID
		}
		return ""
	}
	return t.RequesterID
}
