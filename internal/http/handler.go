package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/authz"
	dto "task-market.com/task-market/internal/data_models"
	apperrors "task-market.com/task-market/internal/errors"
	middleware "task-market.com/task-market/internal/http/middlewares"
	"task-market.com/task-market/internal/services"
)

type Handler struct {
	tasks         *services.TaskService
	categories    *services.CategoryService
	applications  *services.ApplicationService
	messages      *services.MessageService
	reviews       *services.ReviewService
	notifications *services.NotificationService
	profiles      *services.ProfileService
}

func NewHandler(svc *services.Services) *Handler {
	return &Handler{
		tasks:         svc.Tasks,
		categories:    svc.Categories,
		applications:  svc.Applications,
		messages:      svc.Messages,
		reviews:       svc.Reviews,
		notifications: svc.Notifications,
		profiles:      svc.Profiles,
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// actor returns the authenticated caller, or the zero Actor on public routes.
func actor(c echo.Context) authz.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

// respondError maps an engine error onto its HTTP status. Dependency failures
// are logged and reported without their cause.
func respondError(c echo.Context, err error) error {
	code := apperrors.StatusCode(err)
	kind := apperrors.KindOf(err)
	message := err.Error()

	if kind == apperrors.KindDependencyFailure {
		log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
		message = "internal server error"
	}

	return echo.NewHTTPError(code, dto.ErrorResponse{
		Error: message,
		Kind:  string(kind),
	}).SetInternal(err)
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return respondError(c, apperrors.ErrInvalidJSON)
	}
	return nil
}
