package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/deepresearch/internal/agent/core"
	"github.com/mohammad-safakhou/deepresearch/internal/agent/telemetry"
	"github.com/mohammad-safakhou/deepresearch/internal/store"
)

// Runner executes a research query end to end.
type Runner interface {
	Run(ctx context.Context, query string) (core.ResearchResult, error)
}

// Archive persists and retrieves completed runs.
type Archive interface {
	SaveRun(ctx context.Context, result core.ResearchResult) error
	GetRun(ctx context.Context, id string) (core.ResearchResult, error)
	SearchRuns(q string, limit int) ([]store.SearchHit, error)
	Ping(ctx context.Context) error
}

// Server exposes the research pipeline over HTTP.
type Server struct {
	echo    *echo.Echo
	runner  Runner
	archive Archive
	logger  *log.Logger
}

// New builds the HTTP server around a runner and an optional archive. A nil
// archive disables run persistence and lookup.
func New(runner Runner, archive Archive, tel *telemetry.Telemetry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	s := &Server{echo: e, runner: runner, archive: archive, logger: baseLogger}

	e.GET("/healthz", s.health)
	if tel != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(tel.Registry(), promhttp.HandlerOpts{})))
	} else {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api")
	api.POST("/research", s.research)
	api.GET("/runs/:id", s.getRun)
	api.GET("/runs/search", s.searchRuns)

	return s
}

type researchRequest struct {
	Query string `json:"query"`
}

func (s *Server) research(c echo.Context) error {
	var req researchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	result, err := s.runner.Run(c.Request().Context(), req.Query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if s.archive != nil {
		if err := s.archive.SaveRun(c.Request().Context(), result); err != nil {
			// The run succeeded; archiving is best-effort.
			s.logger.Printf("archiving run %s failed: %v", result.ID, err)
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) getRun(c echo.Context) error {
	if s.archive == nil {
		return echo.NewHTTPError(http.StatusNotFound, "run archive disabled")
	}
	result, err := s.archive.GetRun(c.Request().Context(), c.Param("id"))
	if err == store.ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) searchRuns(c echo.Context) error {
	if s.archive == nil {
		return echo.NewHTTPError(http.StatusNotFound, "run archive disabled")
	}
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit := 10
	if l := c.QueryParam("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	hits, err := s.archive.SearchRuns(q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"hits": hits})
}

func (s *Server) health(c echo.Context) error {
	if s.archive != nil {
		if err := s.archive.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, fmt.Sprintf("archive unavailable: %v", err))
		}
	}
	return c.String(http.StatusOK, "ok")
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving on addr and blocks.
func (s *Server) Start(addr string) error {
	log.Printf("listening on %s", addr)
	return s.echo.Start(addr)
}
