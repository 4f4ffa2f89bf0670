package controllers

import (
	"github.com/ViBaTo/panel-control-tm/handlers"
	"github.com/gin-gonic/gin"
)

// DataHandlers groups the handlers behind the session guard.
type DataHandlers struct {
	Patients *handlers.PatientHandler
	Calls    *handlers.CallHandler
	Pages    *handlers.PageHandler
	Tables   *handlers.TableHandler
	Exports  *handlers.ExportHandler
	Realtime *handlers.RealtimeHandler
}

// SetupPatientRoutes mounts the dashboard pages, the data API and the
// realtime streams. Every route requires a session.
func SetupPatientRoutes(router *gin.Engine, h DataHandlers, apiKey, requireSession gin.HandlerFunc) {
	pages := router.Group("/", requireSession)
	{
		pages.GET("/dashboard", h.Pages.Dashboard)
		pages.GET("/citas", h.Pages.Appointments)
		pages.PUT("/citas/:call_id/status", h.Pages.ToggleAppointment)
		pages.GET("/pacientes", h.Pages.Patients)
		pages.GET("/realtime/:table", h.Realtime.Stream)
	}

	api := router.Group("/api", apiKey, requireSession)
	{
		api.GET("/patients", h.Patients.GetAllPatients)
		api.POST("/patients", h.Patients.CreatePatient)
		api.GET("/patients/:patient_id", h.Patients.GetPatientByID)
		api.PUT("/patients/:patient_id", h.Patients.UpdatePatient)
		api.DELETE("/patients/:patient_id", h.Patients.DeletePatient)
		api.PATCH("/patients/:patient_id/status", h.Patients.TogglePatientStatus)

		api.GET("/calls", h.Calls.GetRecentCalls)
		api.GET("/calls/metrics", h.Calls.GetAgentMetrics)
		api.PUT("/calls/:call_id/status", h.Calls.UpdateCallStatus)

		api.GET("/tables/:table", h.Tables.GetTable)
	}

	diagnostics := router.Group("/diagnostics", apiKey, requireSession)
	{
		diagnostics.GET("/tables/:table", h.Tables.AnalyzeTable)
		diagnostics.GET("/tables/:table/columns", h.Tables.GetTableColumns)
	}

	exports := router.Group("/export", requireSession)
	{
		exports.GET("/patients.xlsx", h.Exports.ExportPatients)
		exports.GET("/calls.xlsx", h.Exports.ExportCalls)
	}
}
