package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ViBaTo/panel-control-tm/pages"
	"github.com/gin-gonic/gin"
)

// PageLoader builds the dashboard page states.
type PageLoader interface {
	Dashboard(ctx context.Context) pages.State[pages.Dashboard]
	Appointments(ctx context.Context) pages.State[[]pages.AppointmentRow]
	Patients(ctx context.Context, query string) pages.State[pages.Patients]
	ToggleStatus(ctx context.Context, callID, current string, confirmed bool) (pages.ToggleResult, error)
}

type PageHandler struct {
	loader PageLoader
}

func NewPageHandler(loader PageLoader) *PageHandler {
	return &PageHandler{loader: loader}
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.loader.Dashboard(c.Request.Context()))
}

func (h *PageHandler) Appointments(c *gin.Context) {
	c.JSON(http.StatusOK, h.loader.Appointments(c.Request.Context()))
}

func (h *PageHandler) Patients(c *gin.Context) {
	c.JSON(http.StatusOK, h.loader.Patients(c.Request.Context(), c.Query("q")))
}

// ToggleAppointment flips a Pendiente/Procesado appointment. Without
// "confirm": true it answers 428 with the question to ask the user.
func (h *PageHandler) ToggleAppointment(c *gin.Context) {
	var body struct {
		CurrentStatus string `json:"currentStatus" binding:"required"`
		Confirm       bool   `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentStatus is required"})
		return
	}

	res, err := h.loader.ToggleStatus(c.Request.Context(), c.Param("call_id"), body.CurrentStatus, body.Confirm)
	var toggleErr *pages.ToggleError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, pages.ErrConfirmationRequired):
		c.JSON(http.StatusPreconditionRequired, res)
	case errors.Is(err, pages.ErrNotToggleable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &toggleErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": toggleErr.Message, "change": res.Change})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
