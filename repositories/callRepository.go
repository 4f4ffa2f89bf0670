package repositories

import (
	"context"
	"fmt"

	"github.com/ViBaTo/panel-control-tm/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecentCallsLimit is how many calls the dashboard shows.
const RecentCallsLimit = 10

var callColumns = []string{
	"id", "call_id", "nombre_completo", "telefono", "tratamiento_de_interes", "fecha_registro", "procesado",
}

type CallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

// ListRecent returns the most recently registered calls.
func (r *CallRepository) ListRecent(ctx context.Context) ([]models.AppointmentCall, error) {
	var calls []models.AppointmentCall
	err := r.db.WithContext(ctx).
		Select(callColumns).
		Order("fecha_registro DESC").
		Limit(RecentCallsLimit).
		Find(&calls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent calls: %w", err)
	}
	return calls, nil
}

// ListAll reads the whole call log.
func (r *CallRepository) ListAll(ctx context.Context) ([]models.AppointmentCall, error) {
	var calls []models.AppointmentCall
	if err := r.db.WithContext(ctx).Select(callColumns).Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to get calls: %w", err)
	}
	return calls, nil
}

// SetProcessed updates every row with the given call identifier and returns
// the rows as stored after the update.
func (r *CallRepository) SetProcessed(ctx context.Context, callID string, procesado bool) ([]models.AppointmentCall, error) {
	var calls []models.AppointmentCall
	err := r.db.WithContext(ctx).
		Model(&calls).
		Clauses(clause.Returning{}).
		Where("call_id = ?", callID).
		Update("procesado", procesado).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update call %s: %w", callID, err)
	}
	return calls, nil
}
