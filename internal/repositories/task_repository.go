package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"task-market.com/task-market/internal/constants"
	model "task-market.com/task-market/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

var (
	ErrOptimisticLock = errors.New("optimistic locking conflict")
	ErrNotFound       = gorm.ErrRecordNotFound
	ErrDuplicate      = errors.New("duplicate record")
	ErrInUse          = errors.New("record is still referenced")
)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type TaskFilter struct {
	Search      string
	CategoryID  string
	MinPrice    *float64
	MaxPrice    *float64
	Status      constants.TaskStatus
	RequesterID string
	AssigneeID  string
	IsUrgent    *bool
	IsRemote    *bool
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"deadline":   "deadline",
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.Version == 0 {
		task.Version = 1
	}
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]model.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{})

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.CategoryID != "" {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.RequesterID != "" {
		query = query.Where("requester_id = ?", f.RequesterID)
	}
	if f.AssigneeID != "" {
		query = query.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.IsUrgent != nil {
		query = query.Where("is_urgent = ?", *f.IsUrgent)
	}
	if f.IsRemote != nil {
		query = query.Where("is_remote = ?", *f.IsRemote)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "desc"
	if f.SortOrder == "asc" {
		direction = "asc"
	}

	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	var tasks []model.Task
	err := query.Order(column + " " + direction).
		Offset((page - 1) * size).
		Limit(size).
		Find(&tasks).Error
	return tasks, total, err
}

// Update writes the editable fields of task if nobody changed it since it was read.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]interface{}{
			"title":           task.Title,
			"description":     task.Description,
			"category_id":     task.CategoryID,
			"price":           task.Price,
			"location":        task.Location,
			"deadline":        task.Deadline,
			"is_urgent":       task.IsUrgent,
			"is_remote":       task.IsRemote,
			"estimated_hours": task.EstimatedHours,
			"version":         gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	task.Version++
	return nil
}

// Transition moves task out of status from, writing its lifecycle fields. The
// write only lands when both the version and the status still match what the
// caller read.
func (r *TaskRepository) Transition(ctx context.Context, task *model.Task, from constants.TaskStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND version = ? AND status = ?", task.ID, task.Version, from).
		Updates(map[string]interface{}{
			"status":          task.Status,
			"assignee_id":     task.AssigneeID,
			"refund_required": task.RefundRequired,
			"completed_by":    task.CompletedBy,
			"completed_at":    task.CompletedAt,
			"cancelled_by":    task.CancelledBy,
			"cancelled_at":    task.CancelledAt,
			"version":         gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	task.Version++
	return nil
}

// bumpOpen records a new application on an Open task, failing if the task moved.
func (r *TaskRepository) bumpOpen(ctx context.Context, taskID string, version uint) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND version = ? AND status = ?", taskID, version, constants.TaskOpen).
		Updates(map[string]interface{}{
			"applications_count": gorm.Expr("applications_count + 1"),
			"version":            gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func (r *TaskRepository) delete(ctx context.Context, id string, version uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND version = ?", id, version).
		Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	return nil
}
