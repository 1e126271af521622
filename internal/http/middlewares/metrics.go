package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/metrics"
)

// Observe records request counts and latency per route and logs each request.
func Observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			elapsed := time.Since(start)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method

			metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			metrics.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())

			log.Debug().
				Str("method", method).
				Str("path", path).
				Int("status", status).
				Dur("elapsed", elapsed).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("request handled")

			return err
		}
	}
}
