package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "task-market.com/task-market/internal/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *NotificationRepository) FindForRecipient(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]model.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Notification
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

func (r *NotificationRepository) ListByTask(ctx context.Context, taskID string) ([]model.Notification, error) {
	var items []model.Notification
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips is_read once; marking an already read notification is a no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

// Delete removes a notification of recipientID together with its delivery record.
func (r *NotificationRepository) Delete(ctx context.Context, id, recipientID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND recipient_id = ?", id, recipientID).Delete(&model.Notification{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("notification_id = ?", id).Delete(&model.NotificationDelivery{}).Error
	})
}

// ListUndelivered returns the oldest notifications that have no delivery record.
func (r *NotificationRepository) ListUndelivered(ctx context.Context, limit int) ([]model.Notification, error) {
	var items []model.Notification
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN notification_deliveries ON notification_deliveries.notification_id = notifications.id").
		Where("notification_deliveries.notification_id IS NULL").
		Order("notifications.created_at asc").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// MarkDelivered records delivery of ids. Recording a delivery twice keeps the first.
func (r *NotificationRepository) MarkDelivered(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]model.NotificationDelivery, len(ids))
	for i, id := range ids {
		rows[i] = model.NotificationDelivery{NotificationID: id, DeliveredAt: at}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
