package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/logging"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

var errorMessages = map[int]string{
	http.StatusBadRequest:           "Bad request",
	http.StatusNotFound:             "Resource not found",
	http.StatusMethodNotAllowed:     "Method not allowed",
	http.StatusUnsupportedMediaType: "Unsupported media type",
	http.StatusUnprocessableEntity:  "Unprocessable",
	http.StatusTooManyRequests:      "Too many requests",
	http.StatusInternalServerError:  "Internal server error",
	http.StatusServiceUnavailable:   "Service unavailable",
}

// NewErrorResponse builds the error body for an HTTP status code
func NewErrorResponse(code int) ErrorResponse {
	msg, ok := errorMessages[code]
	if !ok {
		msg = http.StatusText(code)
	}
	return ErrorResponse{Error: code, Message: msg}
}

// StatusCode maps an error returned by a handler to an HTTP status code
func StatusCode(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidPage),
		errors.Is(err, domain.ErrMissingSearchTerm),
		errors.Is(err, domain.ErrMissingQuizCategory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler writes every error as an ErrorResponse
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, NewErrorResponse(code))
	}
	if werr != nil {
		logging.Error().Err(werr).Msg("failed to write error response")
	}
}
