package services

import (
	"context"
	"time"

	apperrors "task-market.com/task-market/internal/errors"
	model "task-market.com/task-market/internal/models"
	repository "task-market.com/task-market/internal/repositories"
)

const (
	defaultNotificationsPage = 20
	maxNotificationsPage     = 100
)

// NotificationService is the recipient's view of the outbox. Recipients can
// only read, mark read and delete their own rows; someone else's notification
// is reported as not found.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

type NotificationPage struct {
	Notifications []model.Notification `json:"notifications"`
	Total         int64                `json:"total"`
	UnreadCount   int64                `json:"unreadCount"`
	HasMore       bool                 `json:"hasMore"`
}

func (s *NotificationService) List(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) (*NotificationPage, error) {
	if recipientID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if limit == 0 {
		limit = defaultNotificationsPage
	}
	if limit < 1 || limit > maxNotificationsPage {
		return nil, apperrors.ErrInvalidLimit
	}
	if offset < 0 {
		return nil, apperrors.ErrInvalidOffset
	}

	items, total, err := s.repo.ListForRecipient(ctx, recipientID, limit, offset, unreadOnly)
	if err != nil {
		return nil, storageError(err, apperrors.ErrNotificationNotFound, "list_notifications")
	}
	unread, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrNotificationNotFound, "list_notifications")
	}
	if items == nil {
		items = []model.Notification{}
	}

	return &NotificationPage{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
		HasMore:       int64(offset+len(items)) < total,
	}, nil
}

// MarkRead is idempotent: the read timestamp of an already read notification
// is kept.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id string) (*model.Notification, error) {
	if recipientID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if _, err := s.repo.FindForRecipient(ctx, id, recipientID); err != nil {
		return nil, storageError(err, apperrors.ErrNotificationNotFound, "read_notification")
	}
	if err := s.repo.MarkRead(ctx, id, recipientID, time.Now().UTC()); err != nil {
		return nil, storageError(err, apperrors.ErrNotificationNotFound, "read_notification")
	}
	n, err := s.repo.FindForRecipient(ctx, id, recipientID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrNotificationNotFound, "read_notification")
	}
	return n, nil
}

// MarkAllRead returns the unread count left afterwards.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	if recipientID == "" {
		return 0, apperrors.ErrUnauthenticated
	}
	if err := s.repo.MarkAllRead(ctx, recipientID, time.Now().UTC()); err != nil {
		return 0, storageError(err, apperrors.ErrNotificationNotFound, "read_notifications")
	}
	unread, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, storageError(err, apperrors.ErrNotificationNotFound, "read_notifications")
	}
	return unread, nil
}

func (s *NotificationService) Delete(ctx context.Context, recipientID, id string) error {
	if recipientID == "" {
		return apperrors.ErrUnauthenticated
	}
	return storageError(s.repo.Delete(ctx, id, recipientID), apperrors.ErrNotificationNotFound, "delete_notification")
}
