package pages

import (
	"context"

	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/views"
)

const DashboardTitle = "Panel de Control - Agente de Voz"

type TaskProgress struct {
	Label      string `json:"label"`
	Percentage int    `json:"percentage"`
}

// RecentCall is one row of the recent calls panel.
type RecentCall struct {
	views.Appointment
	Initial string `json:"initial"`
}

type Dashboard struct {
	Title        string               `json:"title"`
	Metrics      *models.AgentMetrics `json:"metrics"`
	RecentCalls  []RecentCall         `json:"recentCalls"`
	TaskProgress []TaskProgress       `json:"taskProgress"`
}

func taskProgress() []TaskProgress {
	return []TaskProgress{
		{Label: "Llamadas atendidas", Percentage: 89},
		{Label: "Citas confirmadas", Percentage: 76},
		{Label: "Seguimientos realizados", Percentage: 82},
		{Label: "Reagendamientos", Percentage: 45},
		{Label: "Cancelaciones procesadas", Percentage: 23},
	}
}

// Dashboard loads metrics and recent calls. Either one falling back marks
// the whole page as showing sample data. The metrics error wins over the
// calls error.
func (l *Loader) Dashboard(ctx context.Context) State[Dashboard] {
	page := Dashboard{Title: DashboardTitle, TaskProgress: taskProgress()}
	fallback := false

	metrics := l.calls.AgentMetrics(ctx)
	if metrics.Success && metrics.Data != nil {
		page.Metrics = metrics.Data
	} else {
		page.Metrics = views.FallbackMetrics()
		fallback = true
		l.fellBack("dashboard.metrics", reason(metrics.ErrorMessage()))
	}

	calls := l.calls.ListRecent(ctx)
	rows := calls.Data
	if !calls.Success || len(rows) == 0 {
		rows = views.FallbackCalls
		fallback = true
		l.fellBack("dashboard.calls", reason(calls.ErrorMessage()))
	}
	page.RecentCalls = make([]RecentCall, 0, len(rows))
	for _, c := range rows {
		page.RecentCalls = append(page.RecentCalls, RecentCall{
			Appointment: views.ToAppointment(c, l.loc),
			Initial:     views.Initial(models.StringValue(c.NombreCompleto)),
		})
	}

	errMsg := metrics.ErrorMessage()
	if errMsg == "" {
		errMsg = calls.ErrorMessage()
	}
	return settle(page, fallback, errMsg)
}
