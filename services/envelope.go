package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/ViBaTo/panel-control-tm/realtime"
	"github.com/ViBaTo/panel-control-tm/repositories"
)

// ChangePublisher announces successful writes.
type ChangePublisher interface {
	Publish(ctx context.Context, ev realtime.ChangeEvent) error
}

// run executes one data-access call and folds its outcome into an envelope.
// Errors and panics never escape: both become a failed envelope carrying
// empty as data.
func run[T any](ctx context.Context, log *logger.Logger, metrics *monitoring.DashboardMetrics, op string, empty T, fn func(context.Context) (T, error)) (env models.Envelope[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("operation", op).Errorf("Unexpected error: %v", r)
			metrics.ObserveEnvelope(op, false)
			env = models.Fail(empty, fmt.Sprint(r))
		}
	}()

	data, err := fn(ctx)
	if err != nil {
		log.WithError(err).WithField("operation", op).Error("data access failed")
		metrics.ObserveEnvelope(op, false)
		return models.Fail(empty, errorMessage(err))
	}
	metrics.ObserveEnvelope(op, true)
	return models.Ok(data)
}

// NotFoundMessage is the envelope error for a missing row.
const NotFoundMessage = "No se encontró el registro solicitado"

func errorMessage(err error) string {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFoundMessage
	}
	return err.Error()
}

// announce publishes a change and only logs when that fails; the write
// itself already succeeded.
func announce(ctx context.Context, log *logger.Logger, events ChangePublisher, table string, op realtime.Op) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, realtime.ChangeEvent{Table: table, Op: op}); err != nil {
		log.WithError(err).Warnf("failed to announce %s on %s", op, table)
	}
}
