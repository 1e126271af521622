package model

import (
	"time"

	"task-market.com/task-market/internal/constants"
)

// Notification is an outbox row derived from a lifecycle event. After creation
// only the recipient mutates it, by marking it read.
type Notification struct {
	ID          string                     `gorm:"primaryKey;size:36" json:"id"`
	RecipientID string                     `gorm:"size:36;not null;index:idx_notification_recipient_read" json:"recipient_id"`
	TaskID      string                     `gorm:"size:36;not null;index" json:"task_id"`
	Type        constants.NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title       string                     `gorm:"not null" json:"title"`
	Message     string                     `gorm:"not null" json:"message"`
	Data        map[string]any             `gorm:"serializer:json" json:"data"`
	IsRead      bool                       `gorm:"not null;default:false;index:idx_notification_recipient_read" json:"is_read"`
	CreatedAt   time.Time                  `gorm:"index" json:"created_at"`
	ReadAt      *time.Time                 `json:"read_at,omitempty"`
}

// NotificationDelivery records that a notification reached the delivery
// channel. Notifications without one are picked up by the reconciler.
type NotificationDelivery struct {
	NotificationID string    `gorm:"primaryKey;size:36"`
	DeliveredAt    time.Time `gorm:"not null"`
}
