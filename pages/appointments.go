package pages

import (
	"context"

	"github.com/ViBaTo/panel-control-tm/views"
)

// AppointmentRow is a row of the appointments table.
type AppointmentRow struct {
	views.Appointment
	Initial    string `json:"initial"`
	Toggleable bool   `json:"toggleable"`
}

// Appointments lists recent calls as appointments, or the sample rows when
// the call log is unavailable or empty.
func (l *Loader) Appointments(ctx context.Context) State[[]AppointmentRow] {
	env := l.calls.ListRecent(ctx)
	errMsg := env.ErrorMessage()

	var list []views.Appointment
	fallback := false
	if env.Success && len(env.Data) > 0 {
		list = views.ToAppointments(env.Data, l.loc)
	} else {
		list = views.FallbackAppointments()
		fallback = true
		l.fellBack("appointments", reason(errMsg))
	}

	rows := make([]AppointmentRow, 0, len(list))
	for _, a := range list {
		_, ok := views.NextStatus(a.Status)
		rows = append(rows, AppointmentRow{Appointment: a, Initial: views.Initial(a.Patient), Toggleable: ok})
	}
	return settle(rows, fallback, errMsg)
}

// ToggleResult is the outcome of a status change request.
type ToggleResult struct {
	Change  views.StatusChange `json:"change"`
	Prompt  string             `json:"prompt,omitempty"`
	Message string             `json:"message,omitempty"`
}

// ToggleStatus flips an appointment between Pendiente and Procesado. Without
// confirmed nothing is written and ErrConfirmationRequired is returned along
// with the prompt to show.
func (l *Loader) ToggleStatus(ctx context.Context, callID, current string, confirmed bool) (ToggleResult, error) {
	change, ok := views.NextStatus(current)
	if !ok {
		return ToggleResult{}, ErrNotToggleable
	}

	res := ToggleResult{Change: change}
	if !confirmed {
		res.Prompt = change.ConfirmPrompt()
		return res, ErrConfirmationRequired
	}

	env := l.calls.UpdateStatus(ctx, callID, change.To)
	if !env.Success {
		res.Message = views.FailureMessage(env.ErrorMessage())
		return res, &ToggleError{Message: res.Message}
	}
	res.Message = change.SuccessMessage()
	return res, nil
}

// ToggleError carries the user-facing failure message of a status update.
type ToggleError struct {
	Message string
}

func (e *ToggleError) Error() string { return e.Message }
