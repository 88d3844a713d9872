package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"

	"github.com/roach88/sumdb/internal/engine"
)

// HTTPServer exposes an Engine over HTTP.
type HTTPServer struct {
	Echo *echo.Echo

	// mu serializes writes; selects may run concurrently with each other.
	mu      sync.RWMutex
	engine  *engine.Engine
	logger  *slog.Logger
	ids     IDGenerator
	reg     *prometheus.Registry
	metrics *metrics
}

// Option configures an HTTPServer.
type Option func(*HTTPServer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *HTTPServer) {
		s.logger = l
	}
}

// WithIDGenerator sets the request ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *HTTPServer) {
		s.ids = g
	}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ValidateRequest binds the request body into s and validates it.
func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

// New creates a server over eng with every route registered. It does not
// listen; see Start.
func New(eng *engine.Engine, opts ...Option) *HTTPServer {
	s := &HTTPServer{
		Echo:   echo.New(),
		engine: eng,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
		reg:    prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.reg)

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Validator = &CustomValidator{validator: validator.New()}
	s.Echo.HTTPErrorHandler = s.errorHandler

	s.Echo.Use(s.CreateReqContext)
	s.Echo.Use(s.LoggerMiddleware)

	// technical
	s.Echo.GET("/hc", s.HealthCheck)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})))

	tables := s.Echo.Group("/tables")
	tables.GET("", ccHandler(s.ListTables))
	tables.POST("", ccHandler(s.DefineTable))
	tables.GET("/:table", ccHandler(s.DescribeTable))
	tables.POST("/:table/rows", ccHandler(s.InsertRow))
	s.Echo.POST("/query", ccHandler(s.Query))

	return s
}

// Start serves h2c on addr until Shutdown. It returns once the listener
// is bound; serve errors after that are logged.
func (s *HTTPServer) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.Echo.Listener = listener
	go func() {
		s.logger.Info("starting h2c server", "addr", listener.Addr().String())
		err := s.Echo.StartH2CServer("", &http2.Server{})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("h2c server failed", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *HTTPServer) Addr() string {
	if s.Echo.Listener == nil {
		return ""
	}
	return s.Echo.Listener.Addr().String()
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
