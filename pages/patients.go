package pages

import (
	"context"
	"strings"

	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/views"
)

type PatientRow struct {
	models.Patient
	FullName    string `json:"fullName"`
	Initials    string `json:"initials"`
	StatusLabel string `json:"statusLabel"`
	Registered  string `json:"registered"`
}

type Patients struct {
	Query    string             `json:"query"`
	Patients []PatientRow       `json:"patients"`
	Shown    int                `json:"shown"`
	Total    int                `json:"total"`
	Stats    views.PatientStats `json:"stats"`
}

// Patients loads every patient, filters by query and computes the stats
// panel over the unfiltered list. An empty table falls back silently; a
// failed query falls back with the error.
func (l *Loader) Patients(ctx context.Context, query string) State[Patients] {
	res := l.patients.List(ctx)
	errMsg := res.ErrorMessage()

	all := res.Data
	fallback := false
	if !res.Success || len(all) == 0 {
		all = views.FallbackPatients
		fallback = true
		l.fellBack("patients", reason(errMsg))
	}

	query = strings.TrimSpace(query)
	filtered := views.FilterPatients(all, query)
	page := Patients{
		Query:    query,
		Patients: make([]PatientRow, 0, len(filtered)),
		Shown:    len(filtered),
		Total:    len(all),
		Stats:    views.ComputePatientStats(all, l.now().In(l.loc)),
	}
	for _, p := range filtered {
		page.Patients = append(page.Patients, PatientRow{
			Patient:     p,
			FullName:    views.FullName(p),
			Initials:    views.Initials(p),
			StatusLabel: views.StatusLabel(p.Activo),
			Registered:  views.FormatDate(p.CreatedAt, l.loc),
		})
	}
	return settle(page, fallback, errMsg)
}
