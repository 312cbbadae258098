package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

var validLeadStatuses = map[string]bool{
	domain.LeadStatusNew:       true,
	domain.LeadStatusContacted: true,
	domain.LeadStatusQualified: true,
	domain.LeadStatusConverted: true,
}

// ListLeads returns stored leads, optionally filtered by status.
// GET /leads
func (h *Handler) ListLeads(c echo.Context) error {
	ctx := c.Request().Context()

	status := c.QueryParam("status")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 50
	}

	leads, err := h.store.ListLeads(ctx, status, limit)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list leads"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"leads": leads,
		"count": len(leads),
	})
}

type updateLeadStatusRequest struct {
	Status string `json:"status"`
}

// UpdateLeadStatus transitions a lead to a new status.
// PATCH /leads/:session_id/status
func (h *Handler) UpdateLeadStatus(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req updateLeadStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if !validLeadStatuses[req.Status] {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid status"})
	}

	lead, err := h.store.GetLead(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to get lead", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get lead"})
	}
	if lead == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "lead not found"})
	}

	if err := h.store.UpdateLeadStatus(ctx, sessionID, req.Status); err != nil {
		h.logger.Error("failed to update lead status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update lead status"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id": sessionID,
		"status":     req.Status,
	})
}

// ListConversationSummaries returns stored conversation summaries.
// GET /conversation-summaries
func (h *Handler) ListConversationSummaries(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	summaries, err := h.store.ListConversationSummaries(ctx, limit, offset)
	if err != nil {
		h.logger.Error("failed to list conversation summaries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list summaries"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"summaries": summaries,
		"count":     len(summaries),
	})
}
