package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/authz"
	"task-market.com/task-market/internal/constants"
	apperrors "task-market.com/task-market/internal/errors"
	"task-market.com/task-market/internal/metrics"
	model "task-market.com/task-market/internal/models"
	repository "task-market.com/task-market/internal/repositories"
)

const (
	maxApplicationMessageLength = 1000
	applyAttempts               = 3
)

var (
	errTaskNotAccepting = apperrors.New(apperrors.KindInvalidTransition, "this task is no longer accepting applications")
	errAlreadyApplied   = apperrors.Validation("you have already applied to this task")
)

// ApplicationService owns the application state machine. Every status is
// terminal except pending:
//
//	pending -> accepted | rejected | withdrawn
type ApplicationService struct {
	store      *repository.Store
	tasks      *TaskService
	dispatcher *NotificationDispatcher
	pool       *PoolService
}

func NewApplicationService(store *repository.Store, tasks *TaskService, dispatcher *NotificationDispatcher, pool *PoolService) *ApplicationService {
	return &ApplicationService{
		store:      store,
		tasks:      tasks,
		dispatcher: dispatcher,
		pool:       pool,
	}
}

type ApplyInput struct {
	Message       *string
	ProposedPrice *float64
}

// Apply creates a pending application. The insert is conditional on the task
// still being open at the version read, and is retried a few times when only
// the version moved (another applicant got in first).
func (s *ApplicationService) Apply(ctx context.Context, actor authz.Actor, taskID string, in ApplyInput) (*model.Application, error) {
	if in.ProposedPrice != nil && *in.ProposedPrice <= 0 {
		return nil, apperrors.Validation("proposed price must be greater than 0")
	}
	if in.Message != nil {
		msg := strings.TrimSpace(*in.Message)
		if len(msg) > maxApplicationMessageLength {
			return nil, apperrors.Validation("message must be at most %d characters", maxApplicationMessageLength)
		}
		if msg == "" {
			in.Message = nil
		} else {
			in.Message = &msg
		}
	}

	for attempt := 1; ; attempt++ {
		task, err := s.tasks.load(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if err := authz.Authorize(actor, authz.OpApply, authz.Snapshot{Task: task}); err != nil {
			return nil, err
		}
		if task.Status != constants.TaskOpen {
			return nil, errTaskNotAccepting
		}

		app := &model.Application{
			ID:            uuid.NewString(),
			TaskID:        task.ID,
			ApplicantID:   actor.ID,
			Status:        constants.ApplicationPending,
			ProposedPrice: in.ProposedPrice,
			Message:       in.Message,
		}

		err = s.store.CreateApplication(ctx, app, task.Version)
		if err == nil {
			s.tasks.cache.Invalidate(ctx, task.ID, task.Version+1)
			log.Info().Str("task_id", task.ID).Str("application_id", app.ID).Str("applicant_id", actor.ID).Msg("application submitted")

			notify(ctx, s.pool, s.dispatcher, Event{
				Type:       constants.NotificationApplicationReceived,
				TaskID:     task.ID,
				ActorID:    actor.ID,
				Recipients: []string{task.RequesterID},
				Message:    fmt.Sprintf("Someone applied to your task %q", task.Title),
				Data:       map[string]any{"application_id": app.ID},
			})
			return app, nil
		}

		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errAlreadyApplied
		case errors.Is(err, repository.ErrOptimisticLock) && attempt < applyAttempts:
			log.Debug().Str("task_id", task.ID).Int("attempt", attempt).Msg("task moved while applying, retrying")
			continue
		default:
			return nil, storageError(err, apperrors.ErrTaskNotFound, "apply")
		}
	}
}

// Accept performs the accept-one/reject-rest group transition. The winner
// gets application_accepted and every rejected sibling application_rejected.
func (s *ApplicationService) Accept(ctx context.Context, actor authz.Actor, taskID, applicationID string) (*model.Application, error) {
	task, app, err := s.loadPair(ctx, taskID, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpAcceptApplication, authz.Snapshot{Task: task, Application: app}); err != nil {
		return nil, err
	}
	if task.Status != constants.TaskOpen {
		return nil, apperrors.InvalidTransition("task", task.Status, constants.TaskInProgress)
	}
	if app.Status != constants.ApplicationPending {
		return nil, apperrors.InvalidTransition("application", app.Status, constants.ApplicationAccepted)
	}

	out, err := s.store.AcceptApplication(ctx, app.ID, task.Version)
	s.tasks.cache.Invalidate(ctx, task.ID, task.Version+1)
	if err != nil {
		return nil, storageError(err, apperrors.ErrApplicationNotFound, "accept_application")
	}

	metrics.Transitions.WithLabelValues("task", string(constants.TaskInProgress)).Inc()
	metrics.Transitions.WithLabelValues("application", string(constants.ApplicationAccepted)).Inc()
	metrics.Transitions.WithLabelValues("application", string(constants.ApplicationRejected)).Add(float64(len(out.Rejected)))
	log.Info().
		Str("task_id", task.ID).
		Str("application_id", app.ID).
		Str("assignee_id", out.Accepted.ApplicantID).
		Int("rejected", len(out.Rejected)).
		Msg("application accepted")

	notify(ctx, s.pool, s.dispatcher, Event{
		Type:       constants.NotificationApplicationAccepted,
		TaskID:     task.ID,
		ActorID:    actor.ID,
		Recipients: []string{out.Accepted.ApplicantID},
		Message:    fmt.Sprintf("Your application for %q has been accepted", task.Title),
		Data:       map[string]any{"application_id": out.Accepted.ID},
	})
	for _, loser := range out.Rejected {
		notify(ctx, s.pool, s.dispatcher, Event{
			Type:       constants.NotificationApplicationRejected,
			TaskID:     task.ID,
			ActorID:    actor.ID,
			Recipients: []string{loser.ApplicantID},
			Message:    fmt.Sprintf("Your application for %q was not selected", task.Title),
			Data:       map[string]any{"application_id": loser.ID},
		})
	}

	return out.Accepted, nil
}

func (s *ApplicationService) Reject(ctx context.Context, actor authz.Actor, taskID, applicationID string) (*model.Application, error) {
	task, app, err := s.loadPair(ctx, taskID, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpRejectApplication, authz.Snapshot{Task: task, Application: app}); err != nil {
		return nil, err
	}
	if err := s.settle(ctx, app, constants.ApplicationRejected, "reject_application"); err != nil {
		return nil, err
	}

	notify(ctx, s.pool, s.dispatcher, Event{
		Type:       constants.NotificationApplicationRejected,
		TaskID:     task.ID,
		ActorID:    actor.ID,
		Recipients: []string{app.ApplicantID},
		Message:    fmt.Sprintf("Your application for %q was not selected", task.Title),
		Data:       map[string]any{"application_id": app.ID},
	})
	return app, nil
}

func (s *ApplicationService) Withdraw(ctx context.Context, actor authz.Actor, taskID, applicationID string) (*model.Application, error) {
	task, app, err := s.loadPair(ctx, taskID, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpWithdrawApplication, authz.Snapshot{Task: task, Application: app}); err != nil {
		return nil, err
	}
	if err := s.settle(ctx, app, constants.ApplicationWithdrawn, "withdraw_application"); err != nil {
		return nil, err
	}

	notify(ctx, s.pool, s.dispatcher, Event{
		Type:       constants.NotificationApplicationWithdrawn,
		TaskID:     task.ID,
		ActorID:    actor.ID,
		Recipients: []string{task.RequesterID},
		Message:    fmt.Sprintf("An applicant withdrew from %q", task.Title),
		Data:       map[string]any{"application_id": app.ID},
	})
	return app, nil
}

// UpdateStatus routes a requested status change to the matching transition.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor authz.Actor, taskID, applicationID string, status constants.ApplicationStatus) (*model.Application, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("unknown status %q", status)
	}
	switch status {
	case constants.ApplicationAccepted:
		return s.Accept(ctx, actor, taskID, applicationID)
	case constants.ApplicationRejected:
		return s.Reject(ctx, actor, taskID, applicationID)
	case constants.ApplicationWithdrawn:
		return s.Withdraw(ctx, actor, taskID, applicationID)
	default:
		return nil, apperrors.Validation("status must be accepted, rejected or withdrawn")
	}
}

func (s *ApplicationService) Get(ctx context.Context, actor authz.Actor, taskID, applicationID string) (*model.Application, error) {
	task, app, err := s.loadPair(ctx, taskID, applicationID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpViewApplication, authz.Snapshot{Task: task, Application: app}); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) List(ctx context.Context, actor authz.Actor, taskID string) ([]model.Application, error) {
	task, err := s.tasks.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpListApplications, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}

	apps, err := s.store.Applications.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrApplicationNotFound, "list_applications")
	}
	return apps, nil
}

// Delete removes a pending or withdrawn application. Accepted and rejected
// applications stay as an audit trail unless an admin removes them.
func (s *ApplicationService) Delete(ctx context.Context, actor authz.Actor, taskID, applicationID string) error {
	task, app, err := s.loadPair(ctx, taskID, applicationID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.OpDeleteApplication, authz.Snapshot{Task: task, Application: app}); err != nil {
		return err
	}

	var allowed []constants.ApplicationStatus
	if !actor.IsAdmin {
		allowed = []constants.ApplicationStatus{constants.ApplicationPending, constants.ApplicationWithdrawn}
		if app.Status != constants.ApplicationPending && app.Status != constants.ApplicationWithdrawn {
			return apperrors.New(apperrors.KindInvalidTransition, fmt.Sprintf("cannot delete an application in status %s", app.Status))
		}
	}

	if err := s.store.Applications.Delete(ctx, app.ID, allowed...); err != nil {
		return storageError(err, apperrors.ErrApplicationNotFound, "delete_application")
	}

	log.Info().Str("task_id", task.ID).Str("application_id", app.ID).Str("actor_id", actor.ID).Msg("application deleted")
	return nil
}

// settle moves a pending application to a terminal status other than accepted.
func (s *ApplicationService) settle(ctx context.Context, app *model.Application, to constants.ApplicationStatus, operation string) error {
	if app.Status != constants.ApplicationPending {
		return apperrors.InvalidTransition("application", app.Status, to)
	}
	if err := s.store.Applications.UpdateStatus(ctx, app, constants.ApplicationPending, to); err != nil {
		return storageError(err, apperrors.ErrApplicationNotFound, operation)
	}
	metrics.Transitions.WithLabelValues("application", string(to)).Inc()
	log.Info().Str("task_id", app.TaskID).Str("application_id", app.ID).Str("status", string(to)).Msg("application settled")
	app.UpdatedAt = time.Now().UTC()
	return nil
}

// loadPair resolves an application through its task. An application that
// belongs to a different task is reported as not found.
func (s *ApplicationService) loadPair(ctx context.Context, taskID, applicationID string) (*model.Task, *model.Application, error) {
	if applicationID == "" {
		return nil, nil, apperrors.ErrApplicationIDRequired
	}
	task, err := s.tasks.load(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	app, err := s.store.Applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, nil, storageError(err, apperrors.ErrApplicationNotFound, "load_application")
	}
	if app.TaskID != task.ID {
		return nil, nil, apperrors.ErrApplicationNotFound
	}
	return task, app, nil
}
