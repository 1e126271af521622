package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"task-market.com/task-market/internal/http/validators"
)

func (h *Handler) ListNotifications(c echo.Context) error {
	limit, offset, err := validators.ParseLimitOffset(c)
	if err != nil {
		return respondError(c, err)
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unreadOnly"))

	page, err := h.notifications.List(c.Request().Context(), actor(c).ID, limit, offset, unreadOnly)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, page)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	n, err := h.notifications.MarkRead(c.Request().Context(), actor(c).ID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	unread, err := h.notifications.MarkAllRead(c.Request().Context(), actor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"unreadCount": unread})
}

func (h *Handler) DeleteNotification(c echo.Context) error {
	if err := h.notifications.Delete(c.Request().Context(), actor(c).ID, c.Param("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) GetProfile(c echo.Context) error {
	p, err := h.profiles.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetMe(c echo.Context) error {
	p, err := h.profiles.Get(c.Request().Context(), actor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}
