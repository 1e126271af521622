package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"task-market.com/task-market/internal/constants"
	dto "task-market.com/task-market/internal/data_models"
	"task-market.com/task-market/internal/http/validators"
	"task-market.com/task-market/internal/services"
)

func (h *Handler) Apply(c echo.Context) error {
	var req dto.ApplyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	app, err := h.applications.Apply(c.Request().Context(), actor(c), c.Param("id"), services.ApplyInput{
		Message:       req.Message,
		ProposedPrice: req.ProposedPrice,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, app)
}

func (h *Handler) ListApplications(c echo.Context) error {
	apps, err := h.applications.List(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":        len(apps),
		"applications": apps,
	})
}

func (h *Handler) GetApplication(c echo.Context) error {
	app, err := h.applications.Get(c.Request().Context(), actor(c), c.Param("id"), c.Param("appId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, app)
}

func (h *Handler) UpdateApplicationStatus(c echo.Context) error {
	var req dto.ApplicationStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateApplicationStatus(&req); err != nil {
		return respondError(c, err)
	}

	app, err := h.applications.UpdateStatus(
		c.Request().Context(),
		actor(c),
		c.Param("id"),
		c.Param("appId"),
		constants.ApplicationStatus(req.Status),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, app)
}

func (h *Handler) DeleteApplication(c echo.Context) error {
	if err := h.applications.Delete(c.Request().Context(), actor(c), c.Param("id"), c.Param("appId")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
