package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roach88/sumdb/internal/engine"
)

// APIError is the body of every error response.
type APIError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// engineError converts an error from the engine or parser to an APIError.
func engineError(err error) *APIError {
	code := engine.CodeOf(err)
	return &APIError{Status: statusFor(code), Code: code, Message: err.Error()}
}

// statusFor maps an engine.CodeOf code to an HTTP status. Statements the
// schema rejects are 422; malformed input is 400.
func statusFor(code string) int {
	switch code {
	// typecheck reports a missing table with the same code.
	case string(engine.ErrCodeTableNotFound):
		return http.StatusNotFound
	case engine.CodeParseError, string(engine.ErrCodeInvalidSchema):
		return http.StatusBadRequest
	case string(engine.ErrCodeStorage), engine.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

// errorHandler writes errors as JSON APIError bodies.
func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		apiErr  *APIError
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    codeForStatus(httpErr.Code),
			Message: fmt.Sprint(httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    engine.CodeInternal,
			Message: "internal error",
		}
	}

	logger := s.logger
	if cc, ok := c.(*CustomContext); ok {
		apiErr.RequestID = cc.RequestID
		logger = cc.Log
	}
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", apiErr.Code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(apiErr.Status)
	} else {
		err = c.JSON(apiErr.Status, apiErr)
	}
	if err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}

// codeForStatus names a plain HTTP error: 404 becomes NOT_FOUND.
func codeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return engine.CodeInternal
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
