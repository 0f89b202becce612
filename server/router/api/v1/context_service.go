package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grambharat/gramsathi/ai/persona"
	"github.com/grambharat/gramsathi/store"
)

// GetContext returns the ambient context record, empty when never set.
func (s *APIV1Service) GetContext(c echo.Context) error {
	record, err := s.Store.GetContext(c.Request().Context())
	if err != nil {
		slog.Error("failed to load context", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch context"))
	}
	return c.JSON(http.StatusOK, record)
}

// UpdateContext overwrites the whole context record.
func (s *APIV1Service) UpdateContext(c echo.Context) error {
	var record store.ContextRecord
	if err := c.Bind(&record); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	if err := s.Store.SetContext(c.Request().Context(), &record); err != nil {
		slog.Error("failed to save context", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to save context"))
	}
	slog.Info("context updated", "season", record.Season, "location", record.Location)
	return c.JSON(http.StatusOK, &record)
}

func (s *APIV1Service) ListMemories(c echo.Context) error {
	memories, err := s.Store.ListMemories(c.Request().Context())
	if err != nil {
		slog.Error("failed to list memories", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch memories"))
	}
	return c.JSON(http.StatusOK, map[string]any{"memories": memories})
}

func (s *APIV1Service) ListPersonas(c echo.Context) error {
	return c.JSON(http.StatusOK, persona.List())
}

// LogEarthquakeAlert records a seismic alert from an external detector.
// Ingestion only; delivering warnings to clients is out of scope here.
func (s *APIV1Service) LogEarthquakeAlert(c echo.Context) error {
	formattedTime := time.Now().Format("Monday, 02 January 2006, 03:04:05 PM")
	slog.Warn("earthquake alert received", "time", formattedTime)
	return c.JSON(http.StatusOK, map[string]string{
		"status": "logged",
		"time":   formattedTime,
	})
}
