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
	model "task-market.com/task-market/internal/models"
	repository "task-market.com/task-market/internal/repositories"
)

const maxReviewCommentLength = 1000

var errAlreadyReviewed = apperrors.Validation("you have already reviewed this task")

type ReviewService struct {
	store      *repository.Store
	tasks      *TaskService
	ratings    *RatingAggregator
	dispatcher *NotificationDispatcher
	pool       *PoolService
}

func NewReviewService(store *repository.Store, tasks *TaskService, ratings *RatingAggregator, dispatcher *NotificationDispatcher, pool *PoolService) *ReviewService {
	return &ReviewService{
		store:      store,
		tasks:      tasks,
		ratings:    ratings,
		dispatcher: dispatcher,
		pool:       pool,
	}
}

type ReviewInput struct {
	Rating  int
	Comment *string
}

// Submit records the actor's review of the other participant of a completed
// task. Each participant reviews a task at most once.
func (s *ReviewService) Submit(ctx context.Context, actor authz.Actor, taskID string, in ReviewInput) (*model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	if in.Comment != nil {
		comment := strings.TrimSpace(*in.Comment)
		if len(comment) > maxReviewCommentLength {
			return nil, apperrors.Validation("comment must be at most %d characters", maxReviewCommentLength)
		}
		if comment == "" {
			in.Comment = nil
		} else {
			in.Comment = &comment
		}
	}

	task, err := s.tasks.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpSubmitReview, authz.Snapshot{Task: task}); err != nil {
		return nil, err
	}
	if task.Status != constants.TaskCompleted {
		return nil, apperrors.New(apperrors.KindInvalidTransition, "can only review completed tasks")
	}

	revieweeID := task.CounterParty(actor.ID)
	if revieweeID == "" || revieweeID == actor.ID {
		return nil, apperrors.Validation("task has no counter-party to review")
	}

	reviewed, err := s.store.Reviews.ExistsByTaskAndReviewer(ctx, task.ID, actor.ID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrTaskNotFound, "submit_review")
	}
	if reviewed {
		return nil, errAlreadyReviewed
	}

	review := &model.Review{
		ID:                   uuid.NewString(),
		TaskID:               task.ID,
		ReviewerID:           actor.ID,
		RevieweeID:           revieweeID,
		Rating:               in.Rating,
		Comment:              in.Comment,
		IsReviewingRequester: revieweeID == task.RequesterID,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.store.Reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errAlreadyReviewed
		}
		return nil, storageError(err, apperrors.ErrTaskNotFound, "submit_review")
	}
	log.Info().Str("task_id", task.ID).Str("reviewer_id", actor.ID).Str("reviewee_id", revieweeID).Int("rating", in.Rating).Msg("review submitted")

	s.pool.Submit(ctx, Job{
		Name: "recompute_rating",
		Run: func(ctx context.Context) error {
			if _, err := s.ratings.Recompute(ctx, revieweeID); err != nil {
				return fmt.Errorf("recompute rating of %s: %w", revieweeID, err)
			}
			return nil
		},
	})

	notify(ctx, s.pool, s.dispatcher, Event{
		Type:       constants.NotificationNewReview,
		TaskID:     task.ID,
		ActorID:    actor.ID,
		Recipients: []string{revieweeID},
		Message:    fmt.Sprintf("You received a %d-star review for %q", in.Rating, task.Title),
		Data:       map[string]any{"review_id": review.ID, "rating": in.Rating},
	})

	return review, nil
}

func (s *ReviewService) List(ctx context.Context, taskID string) ([]model.Review, error) {
	task, err := s.tasks.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.Reviews.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, storageError(err, apperrors.ErrTaskNotFound, "list_reviews")
	}
	return reviews, nil
}
