package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/authz"
	apperrors "task-market.com/task-market/internal/errors"
	model "task-market.com/task-market/internal/models"
	repository "task-market.com/task-market/internal/repositories"
)

const maxCategoryNameLength = 100

var (
	errCategoryExists = apperrors.Validation("a category with this name already exists")
	errCategoryInUse  = apperrors.New(apperrors.KindInvalidTransition, "cannot delete a category with associated tasks")
)

// CategoryService manages the categories tasks are filed under. Reads are
// public; every write is admin only.
type CategoryService struct {
	store *repository.Store
}

func NewCategoryService(store *repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

// CategoryInput carries the fields to set. Nil fields are left unchanged on
// update.
type CategoryInput struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
	IsActive    *bool
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	categories, err := s.store.Categories.List(ctx, activeOnly)
	if err != nil {
		return nil, storageError(err, apperrors.ErrCategoryNotFound, "list_categories")
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	if id == "" {
		return nil, apperrors.ErrCategoryIDRequired
	}
	c, err := s.store.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, apperrors.ErrCategoryNotFound, "get_category")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, actor authz.Actor, in CategoryInput) (*model.Category, error) {
	if err := authz.Authorize(actor, authz.OpManageCategories, authz.Snapshot{}); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, apperrors.Validation("category name is required")
	}
	name, err := s.uniqueName(ctx, *in.Name, "")
	if err != nil {
		return nil, err
	}

	c := &model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: trimmed(in.Description),
		Icon:        trimmed(in.Icon),
		Color:       trimmed(in.Color),
		IsActive:    true,
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errCategoryExists
		}
		return nil, storageError(err, apperrors.ErrCategoryNotFound, "create_category")
	}

	log.Info().Str("category_id", c.ID).Str("name", c.Name).Str("actor_id", actor.ID).Msg("category created")
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, actor authz.Actor, id string, in CategoryInput) (*model.Category, error) {
	if err := authz.Authorize(actor, authz.OpManageCategories, authz.Snapshot{}); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if c.Name, err = s.uniqueName(ctx, *in.Name, c.ID); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		c.Description = trimmed(in.Description)
	}
	if in.Icon != nil {
		c.Icon = trimmed(in.Icon)
	}
	if in.Color != nil {
		c.Color = trimmed(in.Color)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	if err := s.store.Categories.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errCategoryExists
		}
		return nil, storageError(err, apperrors.ErrCategoryNotFound, "update_category")
	}
	return c, nil
}

// Delete removes a category that no task refers to.
func (s *CategoryService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := authz.Authorize(actor, authz.OpManageCategories, authz.Snapshot{}); err != nil {
		return err
	}
	if id == "" {
		return apperrors.ErrCategoryIDRequired
	}

	err := s.store.DeleteCategory(ctx, id)
	if errors.Is(err, repository.ErrInUse) {
		return errCategoryInUse
	}
	if err != nil {
		return storageError(err, apperrors.ErrCategoryNotFound, "delete_category")
	}

	log.Info().Str("category_id", id).Str("actor_id", actor.ID).Msg("category deleted")
	return nil
}

// resolveCategory normalizes a task's category reference. Blank means none. An
// inactive category is accepted only when it is already the task's current
// one.
func resolveCategory(ctx context.Context, store *repository.Store, id, current *string) (*string, error) {
	id = trimmed(id)
	if id == nil {
		return nil, nil
	}
	c, err := store.Categories.FindByID(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Validation("unknown category %q", *id)
	}
	if err != nil {
		return nil, storageError(err, apperrors.ErrCategoryNotFound, "resolve_category")
	}
	if !c.IsActive && (current == nil || *current != c.ID) {
		return nil, apperrors.Validation("category %q is not active", c.Name)
	}
	return id, nil
}

// uniqueName trims name and rejects it when another category, other than
// exceptID, already uses it in any letter case.
func (s *CategoryService) uniqueName(ctx context.Context, name, exceptID string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", apperrors.Validation("category name is required")
	case len(name) > maxCategoryNameLength:
		return "", apperrors.Validation("category name must be at most %d characters", maxCategoryNameLength)
	}

	existing, err := s.store.Categories.FindByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return name, nil
	case err != nil:
		return "", storageError(err, apperrors.ErrCategoryNotFound, "check_category_name")
	case existing.ID != exceptID:
		return "", errCategoryExists
	}
	return name, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
