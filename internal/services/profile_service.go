package services

import (
	"context"

	"task-market.com/task-market/internal/authz"
	apperrors "task-market.com/task-market/internal/errors"
	model "task-market.com/task-market/internal/models"
	repository "task-market.com/task-market/internal/repositories"
)

type ProfileService struct {
	repo *repository.ProfileRepository
}

func NewProfileService(repo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, apperrors.ErrProfileNotFound, "get_profile")
	}
	return p, nil
}

// ResolveActor turns an authenticated subject into an Actor, creating its
// profile on first sight. The admin flag is granted by either the identity
// token or the stored profile.
func (s *ProfileService) ResolveActor(ctx context.Context, subject string, adminClaim bool) (authz.Actor, error) {
	if subject == "" {
		return authz.Actor{}, apperrors.ErrUnauthenticated
	}
	p, err := s.repo.Ensure(ctx, subject)
	if err != nil {
		return authz.Actor{}, storageError(err, apperrors.ErrProfileNotFound, "resolve_actor")
	}
	return authz.Actor{ID: subject, IsAdmin: adminClaim || p.IsAdmin}, nil
}
