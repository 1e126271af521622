package repository

import (
	"context"
	"encoding/json"
	"slices"

	"gorm.io/gorm"

	model "task-market.com/task-market/internal/models"
)

const maxReadMarkAttempts = 5

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByTask returns one page of the thread, oldest first. Offset counts from
// the newest message.
func (r *MessageRepository) ListByTask(ctx context.Context, taskID string, limit, offset int) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// MarkRead adds userID to the message's read set. The set only grows, and a
// reader already present leaves the row untouched.
func (r *MessageRepository) MarkRead(ctx context.Context, id, userID string) (*model.Message, error) {
	for attempt := 0; attempt < maxReadMarkAttempts; attempt++ {
		msg, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if msg.IsReadBy(userID) {
			return msg, nil
		}

		before, err := json.Marshal(msg.ReadBy)
		if err != nil {
			return nil, err
		}
		readBy := append(slices.Clone(msg.ReadBy), userID)
		after, err := json.Marshal(readBy)
		if err != nil {
			return nil, err
		}

		res := r.db.WithContext(ctx).Model(&model.Message{}).
			Where("id = ? AND read_by = ?", id, string(before)).
			Update("read_by", gorm.Expr("?", string(after)))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			msg.ReadBy = readBy
			return msg, nil
		}
	}
	return nil, ErrOptimisticLock
}

func (r *MessageRepository) deleteByTask(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.Message{}).Error
}
