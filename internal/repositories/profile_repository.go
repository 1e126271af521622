package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "task-market.com/task-market/internal/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure returns the profile for id, creating an empty one on first sight.
func (r *ProfileRepository) Ensure(ctx context.Context, id string) (*model.Profile, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Profile{ID: id}).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ProfileRepository) SetAdmin(ctx context.Context, id string, admin bool) error {
	if _, err := r.Ensure(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Update("is_admin", admin).Error
}

func (r *ProfileRepository) IncrementCompleted(ctx context.Context, id string) error {
	return r.increment(ctx, id, "completed_tasks")
}

func (r *ProfileRepository) IncrementCreated(ctx context.Context, id string) error {
	return r.increment(ctx, id, "created_tasks")
}

func (r *ProfileRepository) increment(ctx context.Context, id, column string) error {
	if _, err := r.Ensure(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

func (r *ProfileRepository) SetRating(ctx context.Context, id string, rating float64, count int) error {
	if _, err := r.Ensure(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"rating": rating, "rating_count": count}).Error
}
