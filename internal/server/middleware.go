package server

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type CustomContext struct {
	echo.Context
	RequestID string
	Log       *slog.Logger
}

// CreateReqContext assigns every request an ID, echoes it in the
// X-Request-Id response header, and wraps the context for handlers.
func (s *HTTPServer) CreateReqContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := s.ids.Generate()
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)
		cc := &CustomContext{
			Context:   c,
			RequestID: reqID,
			Log:       s.logger.With("request_id", reqID),
		}
		return next(cc)
	}
}

// Casts to custom context for the handler, so this doesn't have to be done per handler
func ccHandler(h func(*CustomContext) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c.(*CustomContext))
	}
}

// LoggerMiddleware writes one record per request and counts it.
func (s *HTTPServer) LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)

		logger := s.logger
		if cc, ok := c.(*CustomContext); ok {
			logger = cc.Log
		}
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		s.metrics.requests.WithLabelValues(req.Method, c.Path(), strconv.Itoa(res.Status)).Inc()
		logger.Debug("request",
			"method", req.Method,
			"path", p,
			"handler_path", c.Path(),
			"status", res.Status,
			"latency", stop,
			"bytes_out", res.Size,
		)
		return nil
	}
}
