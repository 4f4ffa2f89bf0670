package models

import "time"

// Status labels shown for a logged call.
const (
	StatusPendiente = "Pendiente"
	StatusProcesado = "Procesado"
)

// AppointmentCall is a logged inbound call. Rows are written by the call agent;
// the dashboard reads them and flips the processed flag.
type AppointmentCall struct {
	ID                   int64      `gorm:"primaryKey;column:id" json:"id"`
	CallID               *string    `gorm:"column:call_id" json:"call_id"`
	NombreCompleto       *string    `gorm:"column:nombre_completo" json:"nombre_completo"`
	Telefono             *string    `gorm:"column:telefono" json:"telefono"`
	TratamientoDeInteres *string    `gorm:"column:tratamiento_de_interes" json:"tratamiento_de_interes"`
	FechaRegistro        *time.Time `gorm:"column:fecha_registro" json:"fecha_registro"`
	Procesado            bool       `gorm:"column:procesado" json:"procesado"`
}

func (AppointmentCall) TableName() string {
	return "appointment_calls"
}

// StatusLabel maps the processed flag onto its two-state label.
func (c AppointmentCall) StatusLabel() string {
	if c.Procesado {
		return StatusProcesado
	}
	return StatusPendiente
}

// AgentMetrics is the aggregate shown on the dashboard. It is derived from
// the full call set every time and never stored.
type AgentMetrics struct {
	LlamadasTotales     int     `json:"llamadasTotales"`
	CitasProcesadas     int     `json:"citasProcesadas"`
	TasaConversion      string  `json:"tasaConversion"`
	LlamadasPerdidas    int     `json:"llamadasPerdidas"`
	IngresoEstimado     int     `json:"ingresoEstimado"`
	SatisfaccionCliente float64 `json:"satisfaccionCliente"`
}
