// Package server assembles the HTTP server: middleware, API routes, and the
// observability endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/ai/metrics"
	"github.com/grambharat/gramsathi/internal/profile"
	apiv1 "github.com/grambharat/gramsathi/server/router/api/v1"
	"github.com/grambharat/gramsathi/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, llmService llm.Service) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())

	apiV1Service := apiv1.NewAPIV1Service(profile, store, llmService, exporter)
	apiV1Service.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Best-effort: pre-establish the upstream connection so the first chat
	// turn is not slowed down by a cold model.
	go llmService.Warmup(ctx)

	return &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}, nil
}

// Start launches the listener. It returns immediately; listen failures are
// reported through the log.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("gramsathi stopped properly")
}
