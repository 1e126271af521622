package validators

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"task-market.com/task-market/internal/constants"
	dto "task-market.com/task-market/internal/data_models"
	apperrors "task-market.com/task-market/internal/errors"
	repository "task-market.com/task-market/internal/repositories"
)

const maxPageSize = 100

func ValidateTaskRequest(r *dto.TaskRequestData) error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Validation("title is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return apperrors.Validation("description is required")
	}
	if r.Price <= 0 {
		return apperrors.Validation("price must be greater than 0")
	}
	return nil
}

// ParseTaskFilter reads the task listing query string.
func ParseTaskFilter(c echo.Context) (repository.TaskFilter, error) {
	f := repository.TaskFilter{
		Search:      c.QueryParam("search"),
		CategoryID:  c.QueryParam("categoryId"),
		Status:      constants.TaskStatus(c.QueryParam("status")),
		RequesterID: c.QueryParam("requesterId"),
		AssigneeID:  c.QueryParam("assigneeId"),
		SortBy:      c.QueryParam("sortBy"),
		SortOrder:   c.QueryParam("sortOrder"),
		Page:        1,
		PageSize:    20,
	}

	var err error
	if f.MinPrice, err = floatParam(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.IsUrgent, err = boolParam(c, "isUrgent"); err != nil {
		return f, err
	}
	if f.IsRemote, err = boolParam(c, "isRemote"); err != nil {
		return f, err
	}
	if f.Page, err = intParam(c, "page", 1); err != nil || f.Page < 1 {
		return f, apperrors.Validation("page must be a positive integer")
	}
	if f.PageSize, err = intParam(c, "pageSize", 20); err != nil || f.PageSize < 1 || f.PageSize > maxPageSize {
		return f, apperrors.Validation("pageSize must be between 1 and 100")
	}
	switch f.SortOrder {
	case "", "asc", "desc":
	default:
		return f, apperrors.Validation("sortOrder must be asc or desc")
	}

	return f, nil
}

func floatParam(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation("%s must be a number", name)
	}
	return &v, nil
}

func boolParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validation("%s must be true or false", name)
	}
	return &v, nil
}

func intParam(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
