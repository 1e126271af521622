package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"task-market.com/task-market/internal/constants"
	model "task-market.com/task-market/internal/models"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) FindByTaskAndApplicant(ctx context.Context, taskID, applicantID string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND applicant_id = ?", taskID, applicantID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) ListByTask(ctx context.Context, taskID string) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at desc").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListByTaskAndStatus(ctx context.Context, taskID string, status constants.ApplicationStatus) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND status = ?", taskID, status).
		Order("created_at asc").
		Find(&apps).Error
	return apps, err
}

// CountByTaskAndStatus counts the applications of taskID in any of statuses.
func (r *ApplicationRepository) CountByTaskAndStatus(ctx context.Context, taskID string, statuses ...constants.ApplicationStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("task_id = ? AND status IN ?", taskID, statuses).
		Count(&n).Error
	return n, err
}

func (r *ApplicationRepository) create(ctx context.Context, app *model.Application) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// UpdateStatus moves app from one status to another; a concurrent change of
// the row surfaces as ErrOptimisticLock.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, app *model.Application, from, to constants.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ? AND status = ?", app.ID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	app.Status = to
	return nil
}

// Delete removes app only while its status is one of allowed. With no allowed
// statuses the row is removed unconditionally.
func (r *ApplicationRepository) Delete(ctx context.Context, id string, allowed ...constants.ApplicationStatus) error {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if len(allowed) > 0 {
		query = query.Where("status IN ?", allowed)
	}
	res := query.Delete(&model.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	return nil
}
