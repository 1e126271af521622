package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	model "task-market.com/task-market/internal/models"
)

const withTaskCount = "categories.*, (SELECT COUNT(*) FROM tasks WHERE tasks.category_id = categories.id) AS task_count"

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).
		Select(withTaskCount).
		Where("categories.id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByName matches name case-insensitively.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every category by name with the number of tasks filed under it.
func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := r.db.WithContext(ctx).Model(&model.Category{}).Select(withTaskCount)
	if activeOnly {
		query = query.Where("categories.is_active = ?", true)
	}

	var out []model.Category
	err := query.Order("categories.name asc").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":        c.Name,
			"description": c.Description,
			"icon":        c.Icon,
			"color":       c.Color,
			"is_active":   c.IsActive,
		})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
