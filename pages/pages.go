package pages

import (
	"context"
	"errors"
	"time"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/ViBaTo/panel-control-tm/views"
)

var (
	ErrNotToggleable        = errors.New("El estado de esta cita no se puede cambiar")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// CallSource is the subset of the call service the pages read from.
type CallSource interface {
	ListRecent(ctx context.Context) models.Envelope[[]models.AppointmentCall]
	UpdateStatus(ctx context.Context, callID, status string) models.Envelope[[]models.AppointmentCall]
	AgentMetrics(ctx context.Context) models.Envelope[*models.AgentMetrics]
}

// PatientSource lists patients.
type PatientSource interface {
	List(ctx context.Context) models.Envelope[[]models.Patient]
}

// State is what a page renders once its loaders have settled.
type State[T any] struct {
	Loading         bool   `json:"loading"`
	Data            T      `json:"data"`
	IsUsingFallback bool   `json:"isUsingFallback"`
	Error           string `json:"error,omitempty"`
	Warning         string `json:"warning,omitempty"`
}

func settle[T any](data T, fallback bool, errMsg string) State[T] {
	st := State[T]{Data: data, IsUsingFallback: fallback, Error: errMsg}
	if fallback {
		st.Warning = views.FallbackBanner(errMsg)
	}
	return st
}

// Loader builds page states from the data services.
type Loader struct {
	calls    CallSource
	patients PatientSource
	log      *logger.Logger
	metrics  *monitoring.DashboardMetrics
	loc      *time.Location
	now      func() time.Time
}

// NewLoader wires the page loaders. Dates are rendered in loc.
func NewLoader(calls CallSource, patients PatientSource, loc *time.Location, log *logger.Logger, metrics *monitoring.DashboardMetrics) *Loader {
	if loc == nil {
		loc = time.Local
	}
	return &Loader{
		calls:    calls,
		patients: patients,
		log:      log.Component("pages"),
		metrics:  metrics,
		loc:      loc,
		now:      time.Now,
	}
}

func (l *Loader) fellBack(page, reason string) {
	l.metrics.ObserveFallback(page, reason)
	l.log.WithField("page", page).WithField("reason", reason).Debug("serving sample data")
}

func reason(errMsg string) string {
	if errMsg != "" {
		return "error"
	}
	return "empty"
}
