package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/authz"
	"task-market.com/task-market/internal/constants"
	apperrors "task-market.com/task-market/internal/errors"
	model "task-market.com/task-market/internal/models"
	repository "task-market.com/task-market/internal/repositories"
)

const (
	maxMessageLength    = 5000
	defaultMessagesPage = 50
	maxMessagesPage     = 100
)

// MessageService is the append-only conversation attached to a task. Messages
// are never edited or deleted; the only mutation is growing read_by.
type MessageService struct {
	store                *repository.Store
	tasks                *TaskService
	dispatcher           *NotificationDispatcher
	pool                 *PoolService
	allowAfterCompletion bool
}

func NewMessageService(store *repository.Store, tasks *TaskService, dispatcher *NotificationDispatcher, pool *PoolService, allowAfterCompletion bool) *MessageService {
	return &MessageService{
		store:                store,
		tasks:                tasks,
		dispatcher:           dispatcher,
		pool:                 pool,
		allowAfterCompletion: allowAfterCompletion,
	}
}

type Attachment struct {
	URL  string
	Name string
	Type string
}

type MessageInput struct {
	Content    string
	Attachment *Attachment
}

func (s *MessageService) Post(ctx context.Context, actor authz.Actor, taskID string, in MessageInput) (*model.Message, error) {
	content := strings.TrimSpace(in.Content)
	hasFile := in.Attachment != nil && in.Attachment.URL != ""
	if content == "" && !hasFile {
		return nil, apperrors.Validation("message content or attachment is required")
	}
	if len(content) > maxMessageLength {
		return nil, apperrors.Validation("message must be at most %d characters", maxMessageLength)
	}

	task, err := s.tasks.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpPostMessage, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}
	if task.Status == constants.TaskCompleted && !actor.IsAdmin && !s.allowAfterCompletion {
		return nil, apperrors.Validation("cannot send messages on a completed task")
	}

	msg := &model.Message{
		ID:       uuid.NewString(),
		TaskID:   task.ID,
		SenderID: actor.ID,
		ReadBy:   []string{actor.ID},
	}
	if content != "" {
		msg.Content = &content
	}
	if hasFile {
		a := in.Attachment
		msg.FileURL = &a.URL
		if a.Name != "" {
			msg.FileName = &a.Name
		}
		if a.Type != "" {
			msg.FileType = &a.Type
		}
	}

	if err := s.store.Messages.Create(ctx, msg); err != nil {
		return nil, storageError(err, apperrors.ErrMessageNotFound, "post_message")
	}
	log.Debug().Str("task_id", task.ID).Str("message_id", msg.ID).Str("sender_id", actor.ID).Msg("message posted")

	notify(ctx, s.pool, s.dispatcher, Event{
		Type:       constants.NotificationNewMessage,
		TaskID:     task.ID,
		ActorID:    actor.ID,
		Recipients: participants(task),
		Message:    fmt.Sprintf("New message on %q", task.Title),
		Data:       map[string]any{"message_id": msg.ID},
	})

	return msg, nil
}

// List returns a page of the thread, oldest first, and marks every returned
// message read for the actor.
func (s *MessageService) List(ctx context.Context, actor authz.Actor, taskID string, limit, offset int) ([]model.Message, error) {
	if limit == 0 {
		limit = defaultMessagesPage
	}
	if limit < 1 || limit > maxMessagesPage {
		return nil, apperrors.ErrInvalidLimit
	}
	if offset < 0 {
		return nil, apperrors.ErrInvalidOffset
	}

	task, err := s.tasks.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpReadMessages, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}

	msgs, err := s.store.Messages.ListByTask(ctx, task.ID, limit, offset)
	if err != nil {
		return nil, storageError(err, apperrors.ErrMessageNotFound, "list_messages")
	}

	for i := range msgs {
		if msgs[i].IsReadBy(actor.ID) {
			continue
		}
		updated, err := s.store.Messages.MarkRead(ctx, msgs[i].ID, actor.ID)
		if err != nil {
			log.Warn().Err(err).Str("message_id", msgs[i].ID).Str("reader_id", actor.ID).Msg("failed to mark message read")
			continue
		}
		msgs[i].ReadBy = updated.ReadBy
	}

	return msgs, nil
}

// MarkRead adds the actor to the message's read set. Repeating it is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, actor authz.Actor, taskID, messageID string) (*model.Message, error) {
	task, err := s.tasks.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpReadMessages, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}

	msg, err := s.store.Messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrMessageNotFound, "read_message")
	}
	if msg.TaskID != task.ID {
		return nil, apperrors.ErrMessageNotFound
	}
	if msg.IsReadBy(actor.ID) {
		return msg, nil
	}

	msg, err = s.store.Messages.MarkRead(ctx, msg.ID, actor.ID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrMessageNotFound, "read_message")
	}
	return msg, nil
}
