package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	allowOrigin  = "*"
	allowHeaders = "Content-Type, Authorization"
	allowMethods = "GET, POST, PATCH, DELETE, OPTIONS"
)

// CORS stamps the static CORS policy on every response, errors included,
// and answers preflight requests with 204.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, allowOrigin)
			h.Set(echo.HeaderAccessControlAllowHeaders, allowHeaders)
			h.Set(echo.HeaderAccessControlAllowMethods, allowMethods)

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
