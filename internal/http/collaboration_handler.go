package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-market.com/task-market/internal/data_models"
	"task-market.com/task-market/internal/http/validators"
	"task-market.com/task-market/internal/services"
)

func (h *Handler) PostMessage(c echo.Context) error {
	var req dto.MessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := services.MessageInput{Content: req.Content}
	if req.FileURL != nil {
		in.Attachment = &services.Attachment{URL: *req.FileURL}
		if req.FileName != nil {
			in.Attachment.Name = *req.FileName
		}
		if req.FileType != nil {
			in.Attachment.Type = *req.FileType
		}
	}

	msg, err := h.messages.Post(c.Request().Context(), actor(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *Handler) ListMessages(c echo.Context) error {
	limit, offset, err := validators.ParseLimitOffset(c)
	if err != nil {
		return respondError(c, err)
	}

	msgs, err := h.messages.List(c.Request().Context(), actor(c), c.Param("id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":    len(msgs),
		"messages": msgs,
	})
}

func (h *Handler) MarkMessageRead(c echo.Context) error {
	msg, err := h.messages.MarkRead(c.Request().Context(), actor(c), c.Param("id"), c.Param("messageId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *Handler) SubmitReview(c echo.Context) error {
	var req dto.ReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateReviewRequest(&req); err != nil {
		return respondError(c, err)
	}

	review, err := h.reviews.Submit(c.Request().Context(), actor(c), c.Param("id"), services.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, review)
}

func (h *Handler) ListReviews(c echo.Context) error {
	reviews, err := h.reviews.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":   len(reviews),
		"reviews": reviews,
	})
}
