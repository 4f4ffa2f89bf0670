package handlers

import (
	"context"
	"net/http"

	"github.com/ViBaTo/panel-control-tm/middlewares"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/services"
	"github.com/gin-gonic/gin"
)

// PatientAPI is the patient data-access surface.
type PatientAPI interface {
	List(ctx context.Context) models.Envelope[[]models.Patient]
	GetByID(ctx context.Context, id string) models.Envelope[*models.Patient]
	Search(ctx context.Context, term string) models.Envelope[[]models.Patient]
	Create(ctx context.Context, patient *models.Patient) models.Envelope[*models.Patient]
	Update(ctx context.Context, id string, fields map[string]interface{}) models.Envelope[*models.Patient]
	Delete(ctx context.Context, id string) models.Envelope[any]
	ToggleStatus(ctx context.Context, id string, activo bool) models.Envelope[*models.Patient]
}

type PatientHandler struct {
	service PatientAPI
}

func NewPatientHandler(service PatientAPI) *PatientHandler {
	return &PatientHandler{service: service}
}

// GetAllPatients lists every patient, or searches when q is present.
func (h *PatientHandler) GetAllPatients(c *gin.Context) {
	if q, ok := c.GetQuery("q"); ok {
		middlewares.RespondEnvelope(c, h.service.Search(c.Request.Context(), q), http.StatusOK, http.StatusBadGateway)
		return
	}
	middlewares.RespondEnvelope(c, h.service.List(c.Request.Context()), http.StatusOK, http.StatusBadGateway)
}

func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	env := h.service.GetByID(c.Request.Context(), c.Param("patient_id"))
	middlewares.RespondEnvelope(c, env, http.StatusOK, failureStatus(env.ErrorMessage()))
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var patient models.Patient
	if err := c.ShouldBindJSON(&patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Identity and audit columns are assigned by the database layer.
	patient.ID = ""
	patient.CreatedAt = nil
	patient.UpdatedAt = nil
	env := h.service.Create(c.Request.Context(), &patient)
	middlewares.RespondEnvelope(c, env, http.StatusCreated, failureStatus(env.ErrorMessage()))
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	env := h.service.Update(c.Request.Context(), c.Param("patient_id"), fields)
	middlewares.RespondEnvelope(c, env, http.StatusOK, failureStatus(env.ErrorMessage()))
}

func (h *PatientHandler) DeletePatient(c *gin.Context) {
	env := h.service.Delete(c.Request.Context(), c.Param("patient_id"))
	middlewares.RespondEnvelope(c, env, http.StatusOK, failureStatus(env.ErrorMessage()))
}

// TogglePatientStatus sets the activo flag from {"activo": bool}.
func (h *PatientHandler) TogglePatientStatus(c *gin.Context) {
	var body struct {
		Activo *bool `json:"activo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Activo == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activo is required"})
		return
	}
	env := h.service.ToggleStatus(c.Request.Context(), c.Param("patient_id"), *body.Activo)
	middlewares.RespondEnvelope(c, env, http.StatusOK, failureStatus(env.ErrorMessage()))
}

func failureStatus(message string) int {
	switch message {
	case services.NotFoundMessage:
		return http.StatusNotFound
	case services.ErrPatientRequiredFields.Error():
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
