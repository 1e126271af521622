package model

import (
	"time"

	"task-market.com/task-market/internal/constants"
)

type Application struct {
	ID            string                      `gorm:"primaryKey;size:36" json:"id"`
	TaskID        string                      `gorm:"size:36;not null;uniqueIndex:idx_application_task_applicant" json:"task_id"`
	ApplicantID   string                      `gorm:"size:36;not null;uniqueIndex:idx_application_task_applicant;index" json:"applicant_id"`
	Status        constants.ApplicationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ProposedPrice *float64                    `json:"proposed_price,omitempty"`
	Message       *string                     `json:"message,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
