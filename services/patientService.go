package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/ViBaTo/panel-control-tm/realtime"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrPatientRequiredFields is the message for a create without name or phone.
var ErrPatientRequiredFields = errors.New("Nombre y teléfono son campos obligatorios")

type PatientStore interface {
	List(ctx context.Context) ([]models.Patient, error)
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	Search(ctx context.Context, term string) ([]models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Patient, error)
	SetActive(ctx context.Context, id string, activo bool) (*models.Patient, error)
	Delete(ctx context.Context, id string) error
}

const patientsTable = "patients"

type PatientService struct {
	repository PatientStore
	events     ChangePublisher
	log        *logger.Logger
	metrics    *monitoring.DashboardMetrics
}

func NewPatientService(repository PatientStore, events ChangePublisher, log *logger.Logger, metrics *monitoring.DashboardMetrics) *PatientService {
	return &PatientService{repository: repository, events: events, log: log.Component("patients"), metrics: metrics}
}

func (s *PatientService) List(ctx context.Context) models.Envelope[[]models.Patient] {
	return run(ctx, s.log, s.metrics, "patients.list", []models.Patient{}, func(ctx context.Context) ([]models.Patient, error) {
		patients, err := s.repository.List(ctx)
		return nonNil(patients), err
	})
}

func (s *PatientService) GetByID(ctx context.Context, id string) models.Envelope[*models.Patient] {
	return run(ctx, s.log, s.metrics, "patients.get", (*models.Patient)(nil), func(ctx context.Context) (*models.Patient, error) {
		return s.repository.GetByID(ctx, id)
	})
}

func (s *PatientService) Search(ctx context.Context, term string) models.Envelope[[]models.Patient] {
	return run(ctx, s.log, s.metrics, "patients.search", []models.Patient{}, func(ctx context.Context) ([]models.Patient, error) {
		patients, err := s.repository.Search(ctx, strings.TrimSpace(term))
		return nonNil(patients), err
	})
}

// Create requires nombre and telefono; nothing else is checked.
func (s *PatientService) Create(ctx context.Context, patient *models.Patient) models.Envelope[*models.Patient] {
	if err := validatePatient(patient); err != nil {
		s.metrics.ObserveEnvelope("patients.create", false)
		return models.Fail[*models.Patient](nil, err.Error())
	}
	env := run(ctx, s.log, s.metrics, "patients.create", (*models.Patient)(nil), func(ctx context.Context) (*models.Patient, error) {
		return s.repository.Create(ctx, patient)
	})
	if env.Success {
		announce(ctx, s.log, s.events, patientsTable, realtime.OpInsert)
	}
	return env
}

func (s *PatientService) Update(ctx context.Context, id string, fields map[string]interface{}) models.Envelope[*models.Patient] {
	env := run(ctx, s.log, s.metrics, "patients.update", (*models.Patient)(nil), func(ctx context.Context) (*models.Patient, error) {
		return s.repository.Update(ctx, id, fields)
	})
	if env.Success {
		announce(ctx, s.log, s.events, patientsTable, realtime.OpUpdate)
	}
	return env
}

func (s *PatientService) Delete(ctx context.Context, id string) models.Envelope[any] {
	env := run(ctx, s.log, s.metrics, "patients.delete", any(nil), func(ctx context.Context) (any, error) {
		return nil, s.repository.Delete(ctx, id)
	})
	if env.Success {
		announce(ctx, s.log, s.events, patientsTable, realtime.OpDelete)
	}
	return env
}

func (s *PatientService) ToggleStatus(ctx context.Context, id string, activo bool) models.Envelope[*models.Patient] {
	env := run(ctx, s.log, s.metrics, "patients.toggle", (*models.Patient)(nil), func(ctx context.Context) (*models.Patient, error) {
		return s.repository.SetActive(ctx, id, activo)
	})
	if env.Success {
		announce(ctx, s.log, s.events, patientsTable, realtime.OpUpdate)
	}
	return env
}

func validatePatient(patient *models.Patient) error {
	if patient == nil {
		return ErrPatientRequiredFields
	}
	nombre := strings.TrimSpace(models.StringValue(patient.Nombre))
	telefono := strings.TrimSpace(models.StringValue(patient.Telefono))
	err := validation.Errors{
		"nombre":   validation.Validate(nombre, validation.Required),
		"telefono": validation.Validate(telefono, validation.Required),
	}.Filter()
	if err != nil {
		return ErrPatientRequiredFields
	}
	return nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
