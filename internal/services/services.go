package services

import (
	"context"
	"errors"

	"task-market.com/task-market/internal/cache"
	apperrors "task-market.com/task-market/internal/errors"
	"task-market.com/task-market/internal/metrics"
	model "task-market.com/task-market/internal/models"
	"task-market.com/task-market/internal/queue"
	repository "task-market.com/task-market/internal/repositories"
)

type Options struct {
	AllowMessagesAfterCompletion bool
}

// Services is the engine: every operation the HTTP layer can invoke.
type Services struct {
	Tasks         *TaskService
	Categories    *CategoryService
	Applications  *ApplicationService
	Messages      *MessageService
	Reviews       *ReviewService
	Notifications *NotificationService
	Profiles      *ProfileService
	Dispatcher    *NotificationDispatcher
	Ratings       *RatingAggregator
}

func New(store *repository.Store, taskCache cache.TaskCache, publisher queue.Publisher, pool *PoolService, opts Options) *Services {
	dispatcher := NewNotificationDispatcher(store.Notifications, publisher)
	ratings := NewRatingAggregator(store.Reviews, store.Profiles)
	tasks := NewTaskService(store, taskCache, dispatcher, pool)

	return &Services{
		Tasks:         tasks,
		Categories:    NewCategoryService(store),
		Applications:  NewApplicationService(store, tasks, dispatcher, pool),
		Messages:      NewMessageService(store, tasks, dispatcher, pool, opts.AllowMessagesAfterCompletion),
		Reviews:       NewReviewService(store, tasks, ratings, dispatcher, pool),
		Notifications: NewNotificationService(store.Notifications),
		Profiles:      NewProfileService(store.Profiles),
		Dispatcher:    dispatcher,
		Ratings:       ratings,
	}
}

// storageError maps repository errors onto the engine's error taxonomy.
func storageError(err error, notFound *apperrors.Exception, operation string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrOptimisticLock):
		metrics.Conflicts.WithLabelValues(operation).Inc()
		return apperrors.ErrConflictRetry
	default:
		var appErr *apperrors.Exception
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Dependency("storage failure", err)
	}
}

func notify(ctx context.Context, pool *PoolService, dispatcher *NotificationDispatcher, ev Event) {
	pool.Submit(ctx, Job{
		Name: "notify:" + string(ev.Type),
		Run: func(ctx context.Context) error {
			dispatcher.Dispatch(ctx, ev)
			return nil
		},
	})
}

func participants(task *model.Task) []string {
	out := []string{task.RequesterID}
	if task.AssigneeID != nil {
		out = append(out, *task.AssigneeID)
	}
	return out
}
