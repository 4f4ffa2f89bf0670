package services

import (
	"context"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/ViBaTo/panel-control-tm/realtime"
)

type CallStore interface {
	ListRecent(ctx context.Context) ([]models.AppointmentCall, error)
	ListAll(ctx context.Context) ([]models.AppointmentCall, error)
	SetProcessed(ctx context.Context, callID string, procesado bool) ([]models.AppointmentCall, error)
}

const callsTable = "appointment_calls"

type CallService struct {
	repository CallStore
	events     ChangePublisher
	log        *logger.Logger
	metrics    *monitoring.DashboardMetrics
}

func NewCallService(repository CallStore, events ChangePublisher, log *logger.Logger, metrics *monitoring.DashboardMetrics) *CallService {
	return &CallService{repository: repository, events: events, log: log.Component("calls"), metrics: metrics}
}

// ListRecent returns the latest calls, newest first.
func (s *CallService) ListRecent(ctx context.Context) models.Envelope[[]models.AppointmentCall] {
	return run(ctx, s.log, s.metrics, "calls.recent", []models.AppointmentCall{}, func(ctx context.Context) ([]models.AppointmentCall, error) {
		calls, err := s.repository.ListRecent(ctx)
		return nonNil(calls), err
	})
}

// ListAll returns the whole call log.
func (s *CallService) ListAll(ctx context.Context) models.Envelope[[]models.AppointmentCall] {
	return run(ctx, s.log, s.metrics, "calls.all", []models.AppointmentCall{}, func(ctx context.Context) ([]models.AppointmentCall, error) {
		calls, err := s.repository.ListAll(ctx)
		return nonNil(calls), err
	})
}

// UpdateStatus marks the call processed when status is "Procesado" and
// pending for any other value.
func (s *CallService) UpdateStatus(ctx context.Context, callID, status string) models.Envelope[[]models.AppointmentCall] {
	env := run(ctx, s.log, s.metrics, "calls.update_status", []models.AppointmentCall{}, func(ctx context.Context) ([]models.AppointmentCall, error) {
		calls, err := s.repository.SetProcessed(ctx, callID, status == models.StatusProcesado)
		return nonNil(calls), err
	})
	if env.Success {
		announce(ctx, s.log, s.events, callsTable, realtime.OpUpdate)
	}
	return env
}

// AgentMetrics reads the whole call log and derives the dashboard figures.
func (s *CallService) AgentMetrics(ctx context.Context) models.Envelope[*models.AgentMetrics] {
	return run(ctx, s.log, s.metrics, "calls.metrics", (*models.AgentMetrics)(nil), func(ctx context.Context) (*models.AgentMetrics, error) {
		calls, err := s.repository.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		m := ComputeAgentMetrics(calls)
		return &m, nil
	})
}
