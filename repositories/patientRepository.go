package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchLimit caps server-side patient searches.
const SearchLimit = 50

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("record not found")

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// List returns every patient, newest first.
func (r *PatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.WithContext(ctx).
		Select(models.PatientColumns).
		Order("created_at DESC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all patients: %w", err)
	}
	return patients, nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Select(models.PatientColumns).
		Where("id = ?", id).
		Take(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// Search matches term case-insensitively against name, phone, email and
// clinical record number.
func (r *PatientRepository) Search(ctx context.Context, term string) ([]models.Patient, error) {
	pattern := "%" + escapeLike(term) + "%"

	var patients []models.Patient
	err := r.db.WithContext(ctx).
		Select(models.PatientSearchColumns).
		Where("nombre ILIKE ? OR apellidos ILIKE ? OR telefono ILIKE ? OR email ILIKE ? OR numero_historia ILIKE ?",
			pattern, pattern, pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(SearchLimit).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

// Create inserts the patient and returns the stored row.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}
	if patient.CreatedAt == nil {
		now := time.Now()
		patient.CreatedAt = &now
	}

	if err := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(patient).Error; err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

// Update applies the given column values and stamps updated_at.
func (r *PatientRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Patient, error) {
	values := make(map[string]interface{}, len(fields)+1)
	for _, column := range models.PatientUpdatableColumns {
		if v, ok := fields[column]; ok {
			values[column] = v
		}
	}
	values["updated_at"] = time.Now()

	var patients []models.Patient
	err := r.db.WithContext(ctx).
		Model(&patients).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	if len(patients) == 0 {
		return nil, ErrNotFound
	}
	return &patients[0], nil
}

// SetActive flips the activo flag.
func (r *PatientRepository) SetActive(ctx context.Context, id string, activo bool) (*models.Patient, error) {
	return r.Update(ctx, id, map[string]interface{}{"activo": activo})
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Patient{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
