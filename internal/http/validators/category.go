package validators

import (
	"strings"

	"github.com/labstack/echo/v4"

	dto "task-market.com/task-market/internal/data_models"
	apperrors "task-market.com/task-market/internal/errors"
)

func ValidateCategoryCreate(r *dto.CategoryRequest) error {
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		return apperrors.Validation("category name is required")
	}
	return nil
}

// ParseActiveOnly reads ?active=true from the category listing.
func ParseActiveOnly(c echo.Context) (bool, error) {
	active, err := boolParam(c, "active")
	if err != nil || active == nil {
		return false, err
	}
	return *active, nil
}
