package views

import (
	"math"
	"strings"
	"time"

	"github.com/ViBaTo/panel-control-tm/models"
	"golang.org/x/text/cases"
)

// Status labels for the tri-state activo column.
const (
	LabelActivo    = "Activo"
	LabelInactivo  = "Inactivo"
	LabelSinEstado = "Sin estado"
)

// FullName joins nombre and apellidos when both exist.
func FullName(p models.Patient) string {
	nombre := models.StringValue(p.Nombre)
	apellidos := models.StringValue(p.Apellidos)
	if nombre != "" && apellidos != "" {
		return nombre + " " + apellidos
	}
	if nombre != "" {
		return nombre
	}
	return "Sin nombre"
}

// Initials returns up to two upper-case initials of the full name.
func Initials(p models.Patient) string {
	var b strings.Builder
	for _, part := range strings.Split(FullName(p), " ") {
		r := []rune(part)
		if len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	out := []rune(strings.ToUpper(b.String()))
	if len(out) > 2 {
		out = out[:2]
	}
	return string(out)
}

// StatusLabel renders the tri-state activo flag.
func StatusLabel(activo *bool) string {
	switch {
	case activo == nil:
		return LabelSinEstado
	case *activo:
		return LabelActivo
	default:
		return LabelInactivo
	}
}

// FormatDate renders an optional timestamp or "-".
func FormatDate(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return ShortDate(t.In(loc))
}

// FormatDateString renders a date column stored as text. Unparseable values
// are returned unchanged.
func FormatDateString(s string) string {
	if s == "" {
		return "-"
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ShortDate(t)
		}
	}
	return s
}

// FilterPatients keeps patients whose nombre, apellidos or email contain term
// ignoring case, or whose telefono or numero_historia contain it verbatim.
// A blank term keeps everything.
func FilterPatients(patients []models.Patient, term string) []models.Patient {
	term = strings.TrimSpace(term)
	if term == "" {
		return patients
	}
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		switch {
		case containsFold(fold, p.Nombre, needle),
			containsFold(fold, p.Apellidos, needle),
			containsFold(fold, p.Email, needle),
			strings.Contains(models.StringValue(p.Telefono), term),
			strings.Contains(models.StringValue(p.NumeroHistoria), term):
			out = append(out, p)
		}
	}
	return out
}

func containsFold(fold cases.Caser, field *string, needle string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(fold.String(*field), needle)
}

// PatientStats is the summary panel above the patient table.
type PatientStats struct {
	TotalPatients     int `json:"totalPatients"`
	ActivePatients    int `json:"activePatients"`
	InactivePatients  int `json:"inactivePatients"`
	PatientsWithEmail int `json:"patientsWithEmail"`
	PatientsWithPhone int `json:"patientsWithPhone"`
	ThisMonthPatients int `json:"thisMonthPatients"`
	ActivePercentage  int `json:"activePercentage"`
	ContactPercentage int `json:"contactPercentage"`
}

// ComputePatientStats summarises patients relative to the month of today.
func ComputePatientStats(patients []models.Patient, today time.Time) PatientStats {
	s := PatientStats{TotalPatients: len(patients)}
	for _, p := range patients {
		if p.Activo != nil {
			if *p.Activo {
				s.ActivePatients++
			} else {
				s.InactivePatients++
			}
		}
		if strings.TrimSpace(models.StringValue(p.Email)) != "" {
			s.PatientsWithEmail++
		}
		if strings.TrimSpace(models.StringValue(p.Telefono)) != "" {
			s.PatientsWithPhone++
		}
		if p.CreatedAt != nil {
			created := p.CreatedAt.In(today.Location())
			if created.Year() == today.Year() && created.Month() == today.Month() {
				s.ThisMonthPatients++
			}
		}
	}
	if s.TotalPatients > 0 {
		s.ActivePercentage = int(math.Round(float64(s.ActivePatients) / float64(s.TotalPatients) * 100))
		s.ContactPercentage = int(math.Round(float64(s.PatientsWithEmail+s.PatientsWithPhone) / float64(s.TotalPatients*2) * 100))
	}
	return s
}
