package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	model "task-market.com/task-market/internal/models"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	err := r.db.WithContext(ctx).Create(review).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *ReviewRepository) ExistsByTaskAndReviewer(ctx context.Context, taskID, reviewerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("task_id = ? AND reviewer_id = ?", taskID, reviewerID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepository) ListByTask(ctx context.Context, taskID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at desc").
		Find(&reviews).Error
	return reviews, err
}

// RatingsFor returns every rating revieweeID has ever received.
func (r *ReviewRepository) RatingsFor(ctx context.Context, revieweeID string) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("reviewee_id = ?", revieweeID).
		Pluck("rating", &ratings).Error
	return ratings, err
}
