package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/authz"
	"task-market.com/task-market/internal/cache"
	"task-market.com/task-market/internal/constants"
	apperrors "task-market.com/task-market/internal/errors"
	"task-market.com/task-market/internal/metrics"
	model "task-market.com/task-market/internal/models"
	repository "task-market.com/task-market/internal/repositories"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

var errDecidedApplications = apperrors.New(apperrors.KindInvalidTransition, "task has accepted or rejected applications and can only be deleted by an admin")

// TaskService owns the task state machine:
//
//	open -> in_progress -> completed
//	open | in_progress -> cancelled
//
// open -> in_progress happens only through ApplicationService.Accept.
type TaskService struct {
	store      *repository.Store
	cache      cache.TaskCache
	dispatcher *NotificationDispatcher
	pool       *PoolService
}

func NewTaskService(store *repository.Store, taskCache cache.TaskCache, dispatcher *NotificationDispatcher, pool *PoolService) *TaskService {
	return &TaskService{
		store:      store,
		cache:      taskCache,
		dispatcher: dispatcher,
		pool:       pool,
	}
}

type TaskInput struct {
	Title          string
	Description    string
	Price          float64
	CategoryID     *string
	Location       *string
	Deadline       *time.Time
	IsUrgent       bool
	IsRemote       bool
	EstimatedHours *float64
}

func (in *TaskInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Title == "":
		return apperrors.Validation("title is required")
	case len(in.Title) > maxTitleLength:
		return apperrors.Validation("title must be at most %d characters", maxTitleLength)
	case in.Description == "":
		return apperrors.Validation("description is required")
	case len(in.Description) > maxDescriptionLength:
		return apperrors.Validation("description must be at most %d characters", maxDescriptionLength)
	case in.Price <= 0:
		return apperrors.Validation("price must be greater than 0")
	case in.EstimatedHours != nil && *in.EstimatedHours <= 0:
		return apperrors.Validation("estimated hours must be greater than 0")
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor authz.Actor, in TaskInput) (*model.Task, error) {
	if actor.ID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	categoryID, err := resolveCategory(ctx, s.store, in.CategoryID, nil)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		Price:          in.Price,
		CategoryID:     categoryID,
		Location:       in.Location,
		Deadline:       in.Deadline,
		IsUrgent:       in.IsUrgent,
		IsRemote:       in.IsRemote,
		EstimatedHours: in.EstimatedHours,
		Status:         constants.TaskOpen,
		RequesterID:    actor.ID,
		Version:        1,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, storageError(err, apperrors.ErrTaskNotFound, "create_task")
	}

	log.Info().Str("task_id", task.ID).Str("requester_id", actor.ID).Msg("task created")
	return task, nil
}

// GetTask serves reads through the cache.
func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, apperrors.ErrTaskIDRequired
	}
	if task, ok := s.cache.Get(ctx, id); ok {
		return task, nil
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, task)
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.Validation("unknown status %q", filter.Status)
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	tasks, total, err := s.store.Tasks.List(ctx, filter)
	if err != nil {
		return nil, 0, storageError(err, apperrors.ErrTaskNotFound, "list_tasks")
	}
	return tasks, total, nil
}

// UpdateTask edits the terms of an Open task.
func (s *TaskService) UpdateTask(ctx context.Context, actor authz.Actor, id string, in TaskInput) (*model.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpEditTask, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}
	if task.Status != constants.TaskOpen {
		return nil, apperrors.New(apperrors.KindInvalidTransition, fmt.Sprintf("task cannot be edited in status %s", task.Status))
	}

	categoryID, err := resolveCategory(ctx, s.store, in.CategoryID, task.CategoryID)
	if err != nil {
		return nil, err
	}

	task.Title = in.Title
	task.Description = in.Description
	task.Price = in.Price
	task.CategoryID = categoryID
	task.Location = in.Location
	task.Deadline = in.Deadline
	task.IsUrgent = in.IsUrgent
	task.IsRemote = in.IsRemote
	task.EstimatedHours = in.EstimatedHours

	err = s.store.Tasks.Update(ctx, task)
	s.cache.Invalidate(ctx, id, task.Version)
	if err != nil {
		return nil, storageError(err, apperrors.ErrTaskNotFound, "update_task")
	}
	return task, nil
}

// DeleteTask removes an Open or Cancelled task with its applications and
// messages. Accepted and Rejected applications are kept as an audit trail, so
// only an admin may delete a task that has any. The task version check in the
// store catches an accept that lands after the count.
func (s *TaskService) DeleteTask(ctx context.Context, actor authz.Actor, id string) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.OpDeleteTask, authz.Snapshot{Task: task}); err != nil {
		return err
	}
	if task.Status != constants.TaskOpen && task.Status != constants.TaskCancelled {
		return apperrors.New(apperrors.KindInvalidTransition, "cannot delete a task that is in progress or completed")
	}
	if !actor.IsAdmin {
		decided, err := s.store.Applications.CountByTaskAndStatus(ctx, id, constants.ApplicationAccepted, constants.ApplicationRejected)
		if err != nil {
			return storageError(err, apperrors.ErrTaskNotFound, "delete_task")
		}
		if decided > 0 {
			return errDecidedApplications
		}
	}

	err = s.store.DeleteTask(ctx, task)
	s.cache.Invalidate(ctx, id, task.Version+1)
	if err != nil {
		return storageError(err, apperrors.ErrTaskNotFound, "delete_task")
	}

	log.Info().Str("task_id", id).Str("actor_id", actor.ID).Msg("task deleted")
	return nil
}

// CompleteTask moves an InProgress task to Completed. Of two concurrent calls
// exactly one commits; the other gets ConflictRetry.
func (s *TaskService) CompleteTask(ctx context.Context, actor authz.Actor, id string) (*model.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpCompleteTask, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}
	if task.Status != constants.TaskInProgress {
		return nil, apperrors.InvalidTransition("task", task.Status, constants.TaskCompleted)
	}

	now := time.Now().UTC()
	completedBy := actor.ID
	task.Status = constants.TaskCompleted
	task.CompletedAt = &now
	task.CompletedBy = &completedBy

	err = s.store.Tasks.Transition(ctx, task, constants.TaskInProgress)
	s.cache.Invalidate(ctx, id, task.Version)
	if err != nil {
		return nil, storageError(err, apperrors.ErrTaskNotFound, "complete_task")
	}
	metrics.Transitions.WithLabelValues("task", string(constants.TaskCompleted)).Inc()
	log.Info().Str("task_id", id).Str("actor_id", actor.ID).Msg("task completed")

	requesterID, assigneeID := task.RequesterID, *task.AssigneeID
	s.pool.Submit(ctx, Job{
		Name: "task_counters",
		Run: func(ctx context.Context) error {
			if err := s.store.Profiles.IncrementCompleted(ctx, assigneeID); err != nil {
				return fmt.Errorf("increment completed tasks of %s: %w", assigneeID, err)
			}
			if err := s.store.Profiles.IncrementCreated(ctx, requesterID); err != nil {
				return fmt.Errorf("increment created tasks of %s: %w", requesterID, err)
			}
			return nil
		},
	})

	notify(ctx, s.pool, s.dispatcher, Event{
		Type:       constants.NotificationTaskCompleted,
		TaskID:     task.ID,
		ActorID:    actor.ID,
		Recipients: participants(task),
		Message:    fmt.Sprintf("Task %q has been marked as completed", task.Title),
		Data:       map[string]any{"completed_by": actor.ID},
	})

	return task, nil
}

// CancelTask moves an Open or InProgress task to Cancelled and flags it for
// refund. Settling the refund is the payment collaborator's job.
func (s *TaskService) CancelTask(ctx context.Context, actor authz.Actor, id string) (*model.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpCancelTask, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}
	if task.Status.IsTerminal() {
		return nil, apperrors.InvalidTransition("task", task.Status, constants.TaskCancelled)
	}

	// The assignee still hears about the cancellation after being unset.
	recipients := participants(task)

	from := task.Status
	now := time.Now().UTC()
	cancelledBy := actor.ID
	task.Status = constants.TaskCancelled
	task.AssigneeID = nil
	task.CancelledAt = &now
	task.CancelledBy = &cancelledBy
	task.RefundRequired = true

	err = s.store.Tasks.Transition(ctx, task, from)
	s.cache.Invalidate(ctx, id, task.Version)
	if err != nil {
		return nil, storageError(err, apperrors.ErrTaskNotFound, "cancel_task")
	}
	metrics.Transitions.WithLabelValues("task", string(constants.TaskCancelled)).Inc()
	log.Info().Str("task_id", id).Str("actor_id", actor.ID).Bool("refund_required", true).Msg("task cancelled")

	notify(ctx, s.pool, s.dispatcher, Event{
		Type:       constants.NotificationTaskCancelled,
		TaskID:     task.ID,
		ActorID:    actor.ID,
		Recipients: recipients,
		Message:    fmt.Sprintf("Task %q has been cancelled", task.Title),
		Data: map[string]any{
			"cancelled_by":    actor.ID,
			"refund_required": task.RefundRequired,
		},
	})

	return task, nil
}

// load reads the task from the store, bypassing the cache.
func (s *TaskService) load(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, apperrors.ErrTaskIDRequired
	}
	task, err := s.store.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, apperrors.ErrTaskNotFound, "load_task")
	}
	return task, nil
}
