package validators

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"task-market.com/task-market/internal/constants"
	dto "task-market.com/task-market/internal/data_models"
	apperrors "task-market.com/task-market/internal/errors"
)

func ValidateApplicationStatus(r *dto.ApplicationStatusRequest) error {
	switch constants.ApplicationStatus(r.Status) {
	case constants.ApplicationAccepted, constants.ApplicationRejected, constants.ApplicationWithdrawn:
		return nil
	case "":
		return apperrors.Validation("status is required")
	default:
		return apperrors.Validation("status must be accepted, rejected or withdrawn")
	}
}

func ValidateReviewRequest(r *dto.ReviewRequest) error {
	if r.Rating < 1 || r.Rating > 5 {
		return apperrors.Validation("rating must be between 1 and 5")
	}
	return nil
}

// ParseLimitOffset reads limit/offset query parameters. A missing limit is
// returned as 0 so the service applies its own default.
func ParseLimitOffset(c echo.Context) (int, int, error) {
	limit, offset := 0, 0
	var err error

	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return 0, 0, apperrors.Validation("limit must be a positive integer")
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil || offset < 0 {
			return 0, 0, apperrors.Validation("offset must not be negative")
		}
	}
	return limit, offset, nil
}
