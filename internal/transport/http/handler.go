// Package http provides HTTP handlers for the chat service.
package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/chat"
	"github.com/Italo-Ba-Hall/SITE/internal/store"
)

// Handler handles HTTP requests.
type Handler struct {
	engine *chat.Manager
	store  store.Store
	logger *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(engine *chat.Manager, store store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Conversation API
	e.POST("/chat/start", h.StartChat)
	e.POST("/chat/message", h.SendMessage)
	e.GET("/chat/:session_id/inactivity", h.CheckInactivity)
	e.POST("/chat/end", h.EndChat)
	e.GET("/chat/:session_id/summary", h.GetSummary)

	// Lead management API
	e.GET("/leads", h.ListLeads)
	e.PATCH("/leads/:session_id/status", h.UpdateLeadStatus)
	e.GET("/conversation-summaries", h.ListConversationSummaries)

	e.GET("/health", h.Health)
	e.GET("/stats", h.GetStats)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":          "healthy",
		"active_sessions": h.engine.ActiveSessionCount(),
	})
}

// GetStats reports session and completion counters.
// GET /stats
func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.Stats())
}
