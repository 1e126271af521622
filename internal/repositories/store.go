package repository

import (
	"context"

	"gorm.io/gorm"

	"task-market.com/task-market/internal/constants"
	model "task-market.com/task-market/internal/models"
)

// Store groups the repositories over one database handle. Operations that
// touch more than one row are methods on Store and run in a single
// transaction.
type Store struct {
	db *gorm.DB

	Tasks         *TaskRepository
	Applications  *ApplicationRepository
	Messages      *MessageRepository
	Reviews       *ReviewRepository
	Notifications *NotificationRepository
	Profiles      *ProfileRepository
	Categories    *CategoryRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Tasks:         NewTaskRepository(db),
		Applications:  NewApplicationRepository(db),
		Messages:      NewMessageRepository(db),
		Reviews:       NewReviewRepository(db),
		Notifications: NewNotificationRepository(db),
		Profiles:      NewProfileRepository(db),
		Categories:    NewCategoryRepository(db),
	}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// CreateApplication inserts app against an Open task whose version is still
// taskVersion. The task row is bumped in the same transaction, so an
// application can never land after the task was accepted or cancelled.
func (s *Store) CreateApplication(ctx context.Context, app *model.Application, taskVersion uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Tasks.bumpOpen(ctx, app.TaskID, taskVersion); err != nil {
			return err
		}
		return tx.Applications.create(ctx, app)
	})
}

type AcceptOutcome struct {
	Task     *model.Task
	Accepted *model.Application
	Rejected []model.Application
}

// AcceptApplication performs the accept-one/reject-rest group transition:
// the target application becomes Accepted, every other Pending application of
// the task becomes Rejected and the task moves to InProgress with the
// applicant as assignee. Either all of it commits or none of it does.
func (s *Store) AcceptApplication(ctx context.Context, applicationID string, taskVersion uint) (*AcceptOutcome, error) {
	var out AcceptOutcome

	err := s.Transaction(ctx, func(tx *Store) error {
		app, err := tx.Applications.FindByID(ctx, applicationID)
		if err != nil {
			return err
		}
		task, err := tx.Tasks.FindByID(ctx, app.TaskID)
		if err != nil {
			return err
		}
		if task.Version != taskVersion || task.Status != constants.TaskOpen {
			return ErrOptimisticLock
		}

		assignee := app.ApplicantID
		task.Status = constants.TaskInProgress
		task.AssigneeID = &assignee
		if err := tx.Tasks.Transition(ctx, task, constants.TaskOpen); err != nil {
			return err
		}

		if err := tx.Applications.UpdateStatus(ctx, app, constants.ApplicationPending, constants.ApplicationAccepted); err != nil {
			return err
		}

		rejected, err := tx.Applications.ListByTaskAndStatus(ctx, task.ID, constants.ApplicationPending)
		if err != nil {
			return err
		}
		if len(rejected) > 0 {
			res := tx.db.WithContext(ctx).Model(&model.Application{}).
				Where("task_id = ? AND status = ? AND id <> ?", task.ID, constants.ApplicationPending, app.ID).
				Update("status", constants.ApplicationRejected)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != int64(len(rejected)) {
				return ErrOptimisticLock
			}
			for i := range rejected {
				rejected[i].Status = constants.ApplicationRejected
			}
		}

		out = AcceptOutcome{Task: task, Accepted: app, Rejected: rejected}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes the task with its applications and messages.
func (s *Store) DeleteTask(ctx context.Context, task *model.Task) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.WithContext(ctx).Where("task_id = ?", task.ID).Delete(&model.Application{}).Error; err != nil {
			return err
		}
		if err := tx.Messages.deleteByTask(ctx, task.ID); err != nil {
			return err
		}
		return tx.Tasks.delete(ctx, task.ID, task.Version)
	})
}

// DeleteCategory removes a category no task refers to. It returns ErrInUse
// while any task, in any status, is still filed under it.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		var tasks int64
		if err := tx.db.WithContext(ctx).Model(&model.Task{}).Where("category_id = ?", id).Count(&tasks).Error; err != nil {
			return err
		}
		if tasks > 0 {
			return ErrInUse
		}

		res := tx.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
