package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zizouhuweidi/trivia/internal/metrics"
)

// Metrics records request count and latency per route template. Requests
// that match no route share the "unmatched" label.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" || route == "/*" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(
				c.Request().Method,
				route,
				strconv.Itoa(c.Response().Status),
				time.Since(start),
			)
			return nil
		}
	}
}
