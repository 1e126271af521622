package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-market.com/task-market/internal/data_models"
	"task-market.com/task-market/internal/http/validators"
	"task-market.com/task-market/internal/services"
)

func categoryInput(req *dto.CategoryRequest) services.CategoryInput {
	return services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		IsActive:    req.IsActive,
	}
}

func (h *Handler) ListCategories(c echo.Context) error {
	activeOnly, err := validators.ParseActiveOnly(c)
	if err != nil {
		return respondError(c, err)
	}

	categories, err := h.categories.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CategoryListResponse{Data: categories})
}

func (h *Handler) GetCategory(c echo.Context) error {
	category, err := h.categories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, category)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req dto.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateCategoryCreate(&req); err != nil {
		return respondError(c, err)
	}

	category, err := h.categories.Create(c.Request().Context(), actor(c), categoryInput(&req))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	var req dto.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := h.categories.Update(c.Request().Context(), actor(c), c.Param("id"), categoryInput(&req))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	if err := h.categories.Delete(c.Request().Context(), actor(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
