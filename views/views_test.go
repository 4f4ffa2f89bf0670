package views

import (
	"testing"
	"time"

	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAppointmentDefaults(t *testing.T) {
	fixed := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	a := ToAppointment(models.AppointmentCall{ID: 17}, time.UTC)

	assert.Equal(t, "17", a.ID)
	assert.Equal(t, "Sin nombre", a.Patient)
	assert.Equal(t, "Sin teléfono", a.Phone)
	assert.Equal(t, "Sin servicio", a.Service)
	assert.Equal(t, "5/3/2024", a.Date)
	assert.Equal(t, "Sin hora", a.Time)
	assert.Equal(t, models.StatusPendiente, a.Status)
}

func TestToAppointmentFromCall(t *testing.T) {
	at := time.Date(2024, 11, 20, 9, 5, 0, 0, time.UTC)
	call := models.AppointmentCall{
		ID:                   3,
		CallID:               models.StringPtr("call-abc"),
		NombreCompleto:       models.StringPtr("Lucía Pérez"),
		Telefono:             models.StringPtr("600111222"),
		TratamientoDeInteres: models.StringPtr("Ortodoncia"),
		FechaRegistro:        &at,
		Procesado:            true,
	}

	a := ToAppointment(call, time.UTC)

	assert.Equal(t, Appointment{
		ID:      "call-abc",
		Patient: "Lucía Pérez",
		Phone:   "600111222",
		Service: "Ortodoncia",
		Date:    "20/11/2024",
		Time:    "09:05",
		Status:  models.StatusProcesado,
	}, a)
}

func TestNextStatus(t *testing.T) {
	change, ok := NextStatus("Pendiente")
	require.True(t, ok)
	assert.Equal(t, "Procesado", change.To)
	assert.Equal(t, "¿Estás seguro de que quieres marcar esta cita como procesada?", change.ConfirmPrompt())
	assert.Equal(t, "Cita marcada como procesada correctamente", change.SuccessMessage())

	change, ok = NextStatus("Procesado")
	require.True(t, ok)
	assert.Equal(t, "Pendiente", change.To)
	assert.Equal(t, "pendiente", change.Action)

	_, ok = NextStatus("Confirmada")
	assert.False(t, ok)

	assert.Equal(t, "Error al actualizar el estado: timeout", FailureMessage("timeout"))
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "É", Initial("élida"))
	assert.Equal(t, "?", Initial("  "))
}

func TestPatientDisplay(t *testing.T) {
	p := models.Patient{Nombre: models.StringPtr("ana"), Apellidos: models.StringPtr("ruiz soto")}
	assert.Equal(t, "ana ruiz soto", FullName(p))
	assert.Equal(t, "AR", Initials(p))

	assert.Equal(t, "Sin nombre", FullName(models.Patient{}))
	assert.Equal(t, "SN", Initials(models.Patient{}))

	assert.Equal(t, LabelSinEstado, StatusLabel(nil))
	assert.Equal(t, LabelActivo, StatusLabel(models.BoolPtr(true)))
	assert.Equal(t, LabelInactivo, StatusLabel(models.BoolPtr(false)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(nil, time.UTC))
	at := time.Date(2023, 7, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "1/7/2023", FormatDate(&at, time.UTC))

	assert.Equal(t, "-", FormatDateString(""))
	assert.Equal(t, "9/2/1990", FormatDateString("1990-02-09"))
	assert.Equal(t, "ayer", FormatDateString("ayer"))
}

func TestFilterPatients(t *testing.T) {
	patients := []models.Patient{
		{ID: "1", Nombre: models.StringPtr("José"), Apellidos: models.StringPtr("Núñez"), Telefono: models.StringPtr("611000111")},
		{ID: "2", Nombre: models.StringPtr("Marta"), Email: models.StringPtr("MARTA@clinica.es"), NumeroHistoria: models.StringPtr("HC-0042")},
		{ID: "3"},
	}

	ids := func(ps []models.Patient) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Len(t, FilterPatients(patients, "   "), 3)
	assert.Equal(t, []string{"1"}, ids(FilterPatients(patients, "NÚÑEZ")))
	assert.Equal(t, []string{"1"}, ids(FilterPatients(patients, "  núñez ")))
	assert.Equal(t, []string{"1"}, ids(FilterPatients(patients, " 611 ")))
	assert.Equal(t, []string{"2"}, ids(FilterPatients(patients, "marta@")))
	assert.Equal(t, []string{"1"}, ids(FilterPatients(patients, "000")))
	assert.Equal(t, []string{"2"}, ids(FilterPatients(patients, "HC-00")))
	assert.Empty(t, FilterPatients(patients, "hc-00"))
}

func TestComputePatientStats(t *testing.T) {
	today := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	lastYear := time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC)

	patients := []models.Patient{
		{Activo: models.BoolPtr(true), Email: models.StringPtr("a@b.es"), Telefono: models.StringPtr("1"), CreatedAt: &thisMonth},
		{Activo: models.BoolPtr(true), Email: models.StringPtr(" "), CreatedAt: &lastYear},
		{Activo: models.BoolPtr(false), Telefono: models.StringPtr("2")},
	}

	s := ComputePatientStats(patients, today)

	assert.Equal(t, PatientStats{
		TotalPatients:     3,
		ActivePatients:    2,
		InactivePatients:  1,
		PatientsWithEmail: 1,
		PatientsWithPhone: 2,
		ThisMonthPatients: 1,
		ActivePercentage:  67,
		ContactPercentage: 50,
	}, s)

	assert.Equal(t, PatientStats{}, ComputePatientStats(nil, today))
}

func TestFallbacks(t *testing.T) {
	rows := FallbackAppointments()
	require.Len(t, rows, 6)
	assert.Equal(t, "María García", rows[0].Patient)
	assert.Equal(t, "Reagendada", rows[3].Status)

	assert.Equal(t, "0", FallbackMetrics().TasaConversion)
	assert.Empty(t, FallbackPatients)
	assert.Empty(t, FallbackCalls)

	assert.Equal(t, "Mostrando datos de ejemplo - Error: sin red", FallbackBanner("sin red"))
	assert.Equal(t, "Mostrando datos de ejemplo - Conectando con la base de datos...", FallbackBanner(""))
}
