package views

import (
	"strconv"
	"strings"
	"time"

	"github.com/ViBaTo/panel-control-tm/models"
)

// Appointment is a call shaped for the appointments table.
type Appointment struct {
	ID      string `json:"id"`
	Patient string `json:"patient"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

// Display clock, overridable in tests.
var now = time.Now

// ToAppointment transforms a call row. Times are shown in loc.
func ToAppointment(call models.AppointmentCall, loc *time.Location) Appointment {
	if loc == nil {
		loc = time.Local
	}

	id := models.StringValue(call.CallID)
	if id == "" {
		id = strconv.FormatInt(call.ID, 10)
	}

	a := Appointment{
		ID:      id,
		Patient: orDefault(call.NombreCompleto, "Sin nombre"),
		Phone:   orDefault(call.Telefono, "Sin teléfono"),
		Service: orDefault(call.TratamientoDeInteres, "Sin servicio"),
		Status:  call.StatusLabel(),
	}
	if call.FechaRegistro != nil {
		t := call.FechaRegistro.In(loc)
		a.Date = ShortDate(t)
		a.Time = t.Format("15:04")
	} else {
		a.Date = ShortDate(now().In(loc))
		a.Time = "Sin hora"
	}
	return a
}

// ToAppointments transforms a list of calls.
func ToAppointments(calls []models.AppointmentCall, loc *time.Location) []Appointment {
	out := make([]Appointment, 0, len(calls))
	for _, c := range calls {
		out = append(out, ToAppointment(c, loc))
	}
	return out
}

// ShortDate renders a date the way Spanish locales print it: 5/3/2024.
func ShortDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + "/" + strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Year())
}

// StatusChange describes a toggle of the processed flag.
type StatusChange struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Action string `json:"action"`
}

// NextStatus returns the toggle target for a two-state label. Other labels
// (Confirmada, Reagendada, ...) cannot be toggled.
func NextStatus(current string) (StatusChange, bool) {
	switch current {
	case models.StatusPendiente:
		return StatusChange{From: current, To: models.StatusProcesado, Action: "procesada"}, true
	case models.StatusProcesado:
		return StatusChange{From: current, To: models.StatusPendiente, Action: "pendiente"}, true
	default:
		return StatusChange{}, false
	}
}

// ConfirmPrompt is the question asked before the change is written.
func (c StatusChange) ConfirmPrompt() string {
	return "¿Estás seguro de que quieres marcar esta cita como " + c.Action + "?"
}

// SuccessMessage is shown after the change is stored.
func (c StatusChange) SuccessMessage() string {
	return "Cita marcada como " + c.Action + " correctamente"
}

// FailureMessage is shown when the update fails.
func FailureMessage(reason string) string {
	return "Error al actualizar el estado: " + reason
}

// Initial is the avatar letter of a display name.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r := []rune(name)
	return strings.ToUpper(string(r[0]))
}

func orDefault(s *string, def string) string {
	if v := models.StringValue(s); v != "" {
		return v
	}
	return def
}
