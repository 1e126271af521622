package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-market.com/task-market/internal/data_models"
	"task-market.com/task-market/internal/http/validators"
	"task-market.com/task-market/internal/services"
)

func taskInput(req *dto.TaskRequestData) services.TaskInput {
	return services.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		CategoryID:     req.CategoryID,
		Location:       req.Location,
		Deadline:       req.Deadline,
		IsUrgent:       req.IsUrgent,
		IsRemote:       req.IsRemote,
		EstimatedHours: req.EstimatedHours,
	}
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.TaskRequestData
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateTaskRequest(&req); err != nil {
		return respondError(c, err)
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), actor(c), taskInput(&req))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	task, err := h.tasks.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	filter, err := validators.ParseTaskFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	tasks, total, err := h.tasks.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TaskListResponse{
		Data:       tasks,
		Pagination: dto.NewPagination(total, filter.Page, filter.PageSize),
	})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req dto.TaskRequestData
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateTaskRequest(&req); err != nil {
		return respondError(c, err)
	}

	task, err := h.tasks.UpdateTask(c.Request().Context(), actor(c), c.Param("id"), taskInput(&req))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if err := h.tasks.DeleteTask(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) CompleteTask(c echo.Context) error {
	task, err := h.tasks.CompleteTask(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CancelTask(c echo.Context) error {
	task, err := h.tasks.CancelTask(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}
