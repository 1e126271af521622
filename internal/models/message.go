package model

import (
	"slices"
	"time"
)

type Message struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;not null;index" json:"task_id"`
	SenderID  string    `gorm:"size:36;not null" json:"sender_id"`
	Content   *string   `json:"content,omitempty"`
	FileURL   *string   `json:"file_url,omitempty"`
	FileName  *string   `json:"file_name,omitempty"`
	FileType  *string   `json:"file_type,omitempty"`
	ReadBy    []string  `gorm:"serializer:json" json:"read_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (m *Message) IsReadBy(userID string) bool {
	return slices.Contains(m.ReadBy, userID)
}
