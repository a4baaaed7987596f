// Package server assembles the echo router of the trivia API.
package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/handler"
	"github.com/zizouhuweidi/trivia/internal/middleware"
	ws "github.com/zizouhuweidi/trivia/internal/websocket"
)

// Dependencies are the components served by the router
type Dependencies struct {
	Service   domain.TriviaService
	Health    handler.Pinger
	Hub       *ws.Hub // nil disables /ws
	RateLimit middleware.RateLimitConfig
}

// New builds the echo instance with middleware and every route registered
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	handler.ConfigureEcho(e)

	e.Use(middleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimit(deps.RateLimit))

	handler.NewTriviaHandler(deps.Service).Register(e)

	e.GET("/health", handler.NewHealthHandler(deps.Health).Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if deps.Hub != nil {
		e.GET("/ws", handler.NewWebSocketHandler(deps.Hub).HandleWebSocket)
	}

	return e
}
