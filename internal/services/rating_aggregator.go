package services

import (
	"context"

	repository "task-market.com/task-market/internal/repositories"
)

// RatingAggregator derives a user's rating from every review they received.
// It never folds a new score into the previous average, so the stored value
// is always reproducible from the review table.
type RatingAggregator struct {
	reviews  *repository.ReviewRepository
	profiles *repository.ProfileRepository
}

func NewRatingAggregator(reviews *repository.ReviewRepository, profiles *repository.ProfileRepository) *RatingAggregator {
	return &RatingAggregator{
		reviews:  reviews,
		profiles: profiles,
	}
}

// Mean is the arithmetic mean of ratings, or 0 for none.
func Mean(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// Recompute rewrites userID's rating and rating count from the full review set.
func (a *RatingAggregator) Recompute(ctx context.Context, userID string) (float64, error) {
	ratings, err := a.reviews.RatingsFor(ctx, userID)
	if err != nil {
		return 0, err
	}

	rating := Mean(ratings)
	if err := a.profiles.SetRating(ctx, userID, rating, len(ratings)); err != nil {
		return 0, err
	}
	return rating, nil
}
