package handlers

import (
	"context"
	"net/http"

	"github.com/ViBaTo/panel-control-tm/middlewares"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/gin-gonic/gin"
)

// CallAPI is the call-log data-access surface.
type CallAPI interface {
	ListRecent(ctx context.Context) models.Envelope[[]models.AppointmentCall]
	ListAll(ctx context.Context) models.Envelope[[]models.AppointmentCall]
	UpdateStatus(ctx context.Context, callID, status string) models.Envelope[[]models.AppointmentCall]
	AgentMetrics(ctx context.Context) models.Envelope[*models.AgentMetrics]
}

type CallHandler struct {
	service CallAPI
}

func NewCallHandler(service CallAPI) *CallHandler {
	return &CallHandler{service: service}
}

// GetRecentCalls returns the latest calls, newest first.
func (h *CallHandler) GetRecentCalls(c *gin.Context) {
	middlewares.RespondEnvelope(c, h.service.ListRecent(c.Request.Context()), http.StatusOK, http.StatusBadGateway)
}

func (h *CallHandler) GetAgentMetrics(c *gin.Context) {
	middlewares.RespondEnvelope(c, h.service.AgentMetrics(c.Request.Context()), http.StatusOK, http.StatusBadGateway)
}

// UpdateCallStatus writes {"status": "Procesado"|"Pendiente"} without a
// confirmation step. The dashboard goes through the /citas route instead.
func (h *CallHandler) UpdateCallStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	env := h.service.UpdateStatus(c.Request.Context(), c.Param("call_id"), body.Status)
	middlewares.RespondEnvelope(c, env, http.StatusOK, http.StatusBadGateway)
}
