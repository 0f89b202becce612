// Package v1 implements the REST and SSE surface consumed by the web and
// mobile clients.
package v1

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/ai/metrics"
	"github.com/grambharat/gramsathi/ai/tools"
	"github.com/grambharat/gramsathi/internal/profile"
	"github.com/grambharat/gramsathi/store"
)

type APIV1Service struct {
	Profile    *profile.Profile
	Store      *store.Store
	LLM        llm.Service
	Dispatcher *tools.Dispatcher
	Metrics    *metrics.PrometheusExporter

	// Bounds concurrent inference turns process-wide; everything else is
	// cheap enough to leave unthrottled.
	turnSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, llmService llm.Service, exporter *metrics.PrometheusExporter) *APIV1Service {
	return &APIV1Service{
		Profile:       profile,
		Store:         store,
		LLM:           llmService,
		Dispatcher:    tools.NewDispatcher(store),
		Metrics:       exporter,
		turnSemaphore: semaphore.NewWeighted(4),
	}
}

// RegisterRoutes attaches all API routes under the /api prefix.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/chats", s.ListChats)
	api.POST("/chats", s.CreateChat)
	api.DELETE("/chats/:chatId", s.DeleteChat)
	api.GET("/chats/:chatId/messages", s.GetMessages)
	api.POST("/chats/:chatId/messages", s.SendMessage)
	api.POST("/chats/:chatId/regenerate", s.Regenerate)
	api.POST("/chats/:chatId/messages/:msgIndex/switch", s.SwitchAlternative)

	api.GET("/context", s.GetContext)
	api.POST("/context", s.UpdateContext)
	api.GET("/memories", s.ListMemories)
	api.GET("/personas", s.ListPersonas)

	api.POST("/alerts/earthquake", s.LogEarthquakeAlert)
}
