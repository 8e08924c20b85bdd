package middleware

import (
	"strconv"
	"time"

	"github.com/anonto42/snapgram/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records request latency by method, route template and status.
// statusOf resolves the status a returned error will be rendered with.
func Metrics(statusOf func(error) int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = statusOf(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
