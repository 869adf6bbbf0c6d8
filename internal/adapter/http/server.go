package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/zillow-map-service/internal/dashboard"
	"github.com/couchcryptid/zillow-map-service/internal/views"
)

// Server serves the map page, the chart fragment, and the health, readiness
// and metrics endpoints.
type Server struct {
	echo    *echo.Echo
	addr    string
	service *dashboard.Service
	logger  *slog.Logger
}

// NewServer creates the echo server and registers its routes.
func NewServer(addr string, debug bool, service *dashboard.Service, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	e := echo.New()
	e.Debug = debug
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{echo: e, addr: addr, service: service, logger: logger}

	e.GET("/", s.handleIndex)
	e.GET("/chart", s.handleChart)
	e.GET("/healthz", echo.WrapHandler(http.HandlerFunc(sharedobs.LivenessHandler())))
	e.GET("/readyz", echo.WrapHandler(http.HandlerFunc(sharedobs.ReadinessHandler(ready))))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.addr, "debug", s.echo.Debug)
	return s.echo.Start(s.addr)
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP delegates to the echo router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleIndex(c echo.Context) error {
	return Render(c, http.StatusOK, views.Index(s.service.Slider()))
}

// handleChart renders the choropleth for ?year=. A missing year falls back to
// the latest one.
func (s *Server) handleChart(c echo.Context) error {
	year := s.service.DefaultYear()
	if raw := c.QueryParam("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
		}
		year = v
	}

	fig := s.service.Chart(year)
	return Render(c, http.StatusOK, views.Choropleth(fig, s.service.Basemap(), s.service.Scale()))
}

// Render writes a templ component as the response body.
func Render(c echo.Context, status int, t templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := t.Render(c.Request().Context(), buf); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}
