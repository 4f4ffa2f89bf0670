package views

import "github.com/ViBaTo/panel-control-tm/models"

// Sample data shown while the backend is unreachable or empty.

var (
	FallbackPatients = []models.Patient{}
	FallbackCalls    = []models.AppointmentCall{}
)

// FallbackMetrics returns all-zero agent metrics.
func FallbackMetrics() *models.AgentMetrics {
	return &models.AgentMetrics{TasaConversion: "0"}
}

// FallbackAppointments returns the sample appointment rows.
func FallbackAppointments() []Appointment {
	return []Appointment{
		{ID: "1", Patient: "María García", Phone: "612-345-678", Service: "Limpieza dental", Date: "2024-01-20", Time: "09:00", Status: "Confirmada"},
		{ID: "2", Patient: "Carlos López", Phone: "623-456-789", Service: "Ortodoncia", Date: "2024-01-21", Time: "10:30", Status: "Pendiente"},
		{ID: "3", Patient: "Ana Martín", Phone: "634-567-890", Service: "Blanqueamiento", Date: "2024-01-22", Time: "11:00", Status: "Confirmada"},
		{ID: "4", Patient: "Luis Rodríguez", Phone: "645-678-901", Service: "Implantes", Date: "2024-01-23", Time: "14:00", Status: "Reagendada"},
		{ID: "5", Patient: "Elena Sánchez", Phone: "656-789-012", Service: "Revisión", Date: "2024-01-24", Time: "16:30", Status: "Confirmada"},
		{ID: "6", Patient: "Pedro Jiménez", Phone: "667-890-123", Service: "Endodoncia", Date: "2024-01-25", Time: "12:00", Status: "Pendiente"},
	}
}

// FallbackBanner is the warning shown above sample data.
func FallbackBanner(errMsg string) string {
	if errMsg != "" {
		return "Mostrando datos de ejemplo - Error: " + errMsg
	}
	return "Mostrando datos de ejemplo - Conectando con la base de datos..."
}
