package http

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "task-market.com/task-market/internal/http/middlewares"
	"task-market.com/task-market/internal/metrics"
)

type RouteConfig struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	JWTSecret          string
}

func Register(e *echo.Echo, h *Handler, cfg RouteConfig) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Observe())

	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	limit := middleware.RateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	auth := middleware.Auth([]byte(cfg.JWTSecret), h.profiles)

	public := []echo.MiddlewareFunc{limit}
	private := []echo.MiddlewareFunc{auth, limit}

	e.GET("/tasks", h.ListTasks, public...)
	e.GET("/tasks/:id", h.GetTask, public...)
	e.GET("/tasks/:id/reviews", h.ListReviews, public...)
	e.GET("/users/:id", h.GetProfile, public...)
	e.GET("/categories", h.ListCategories, public...)
	e.GET("/categories/:id", h.GetCategory, public...)

	e.POST("/tasks", h.CreateTask, private...)
	e.PUT("/tasks/:id", h.UpdateTask, private...)
	e.DELETE("/tasks/:id", h.DeleteTask, private...)
	e.POST("/tasks/:id/complete", h.CompleteTask, private...)
	e.POST("/tasks/:id/cancel", h.CancelTask, private...)

	e.GET("/tasks/:id/applications", h.ListApplications, private...)
	e.POST("/tasks/:id/applications", h.Apply, private...)
	e.GET("/tasks/:id/applications/:appId", h.GetApplication, private...)
	e.PATCH("/tasks/:id/applications/:appId", h.UpdateApplicationStatus, private...)
	e.DELETE("/tasks/:id/applications/:appId", h.DeleteApplication, private...)

	e.GET("/tasks/:id/messages", h.ListMessages, private...)
	e.POST("/tasks/:id/messages", h.PostMessage, private...)
	e.PUT("/tasks/:id/messages/:messageId/read", h.MarkMessageRead, private...)

	e.POST("/tasks/:id/reviews", h.SubmitReview, private...)

	e.GET("/notifications", h.ListNotifications, private...)
	e.PUT("/notifications", h.MarkAllNotificationsRead, private...)
	e.PUT("/notifications/:id", h.MarkNotificationRead, private...)
	e.DELETE("/notifications/:id", h.DeleteNotification, private...)

	e.GET("/users/me", h.GetMe, private...)

	e.POST("/categories", h.CreateCategory, private...)
	e.PUT("/categories/:id", h.UpdateCategory, private...)
	e.DELETE("/categories/:id", h.DeleteCategory, private...)
}
