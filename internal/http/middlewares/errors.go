package middleware

import (
	"github.com/labstack/echo/v4"

	dto "task-market.com/task-market/internal/data_models"
	apperrors "task-market.com/task-market/internal/errors"
)

// reject renders e with the same body shape handlers use for engine errors.
func reject(e *apperrors.Exception) error {
	return echo.NewHTTPError(e.StatusCode, dto.ErrorResponse{
		Error: e.Message,
		Kind:  string(e.Kind),
	}).SetInternal(e)
}
