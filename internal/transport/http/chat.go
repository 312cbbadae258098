package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/chat"
)

type startChatRequest struct {
	UserID         string `json:"user_id"`
	InitialMessage string `json:"initial_message"`
}

// StartChat creates a new conversation session. When an initial message is
// supplied the first turn runs inline, so the caller gets the welcome and the
// first reply in one round trip.
// POST /chat/start
func (h *Handler) StartChat(c echo.Context) error {
	var req startChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	session := h.engine.CreateSession(req.UserID)
	h.logger.Info("session started", zap.String("session_id", session.SessionID))

	resp := map[string]any{
		"session_id": session.SessionID,
		"message":    session.Messages[0].Content,
		"phase":      session.Phase,
	}
	if req.InitialMessage != "" {
		if result, ok := h.engine.Respond(c.Request().Context(), session.SessionID, req.InitialMessage); ok {
			resp["response"] = result
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type sendMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SendMessage runs one conversation turn. An absent or timed-out session gets
// the session_expired marker; the caller is expected to start a new session.
// POST /chat/message
func (h *Handler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	result, ok := h.engine.Respond(c.Request().Context(), req.SessionID, req.Message)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session_expired"})
	}

	return c.JSON(http.StatusOK, result)
}

// CheckInactivity returns the inactivity nudge when one is due, 204 otherwise.
// GET /chat/:session_id/inactivity
func (h *Handler) CheckInactivity(c echo.Context) error {
	sessionID := c.Param("session_id")

	message, warned := h.engine.CheckInactivityWarning(sessionID)
	if !warned {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"warning": true,
		"message": message,
	})
}

type endChatRequest struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// EndChat finalizes a conversation session.
// POST /chat/end
func (h *Handler) EndChat(c echo.Context) error {
	var req endChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Reason == "" {
		req.Reason = "user_ended"
	}

	session, ok := h.engine.EndSession(c.Request().Context(), req.SessionID, req.Reason)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session_expired"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id":     session.SessionID,
		"ended":          true,
		"phase":          session.Phase,
		"message_count":  len(session.Messages),
		"summary":        chat.SummarizeConversation(session),
		"lead_qualified": session.ProfileValue("email") != "",
	})
}

// GetSummary returns the live summary of an active session.
// GET /chat/:session_id/summary
func (h *Handler) GetSummary(c echo.Context) error {
	sessionID := c.Param("session_id")

	summary, ok := h.engine.ConversationSummary(sessionID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session_expired"})
	}
	return c.JSON(http.StatusOK, summary)
}
