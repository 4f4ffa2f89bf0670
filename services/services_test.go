package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/realtime"
	"github.com/ViBaTo/panel-control-tm/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePatients struct {
	rows    []models.Patient
	err     error
	panicky bool
	created *models.Patient
	fields  map[string]interface{}
	term    string
}

func (f *fakePatients) List(ctx context.Context) ([]models.Patient, error) {
	if f.panicky {
		panic("connection reset by peer")
	}
	return f.rows, f.err
}

func (f *fakePatients) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePatients) Search(ctx context.Context, term string) ([]models.Patient, error) {
	f.term = term
	return f.rows, f.err
}

func (f *fakePatients) Create(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = "p-new"
	f.created = p
	return p, nil
}

func (f *fakePatients) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Patient, error) {
	f.fields = fields
	if f.err != nil {
		return nil, f.err
	}
	return &models.Patient{ID: id}, nil
}

func (f *fakePatients) SetActive(ctx context.Context, id string, activo bool) (*models.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Patient{ID: id, Activo: models.BoolPtr(activo)}, nil
}

func (f *fakePatients) Delete(ctx context.Context, id string) error {
	return f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, ev realtime.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func TestPatientListSuccess(t *testing.T) {
	repo := &fakePatients{rows: []models.Patient{{ID: "p-1"}, {ID: "p-2"}}}
	svc := NewPatientService(repo, nil, logger.Discard(), nil)

	env := svc.List(context.Background())
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, repo.rows, env.Data)
}

func TestPatientListBackendError(t *testing.T) {
	svc := NewPatientService(&fakePatients{err: errors.New("permission denied for table patients")}, nil, logger.Discard(), nil)

	env := svc.List(context.Background())
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "permission denied for table patients", *env.Error)
	assert.NotNil(t, env.Data)
	assert.Empty(t, env.Data)
}

func TestPatientListPanicBecomesEnvelope(t *testing.T) {
	svc := NewPatientService(&fakePatients{panicky: true}, nil, logger.Discard(), nil)

	env := svc.List(context.Background())
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "connection reset by peer", *env.Error)
	assert.Empty(t, env.Data)
}

func TestPatientEmptyListIsNotNil(t *testing.T) {
	svc := NewPatientService(&fakePatients{}, nil, logger.Discard(), nil)

	env := svc.List(context.Background())
	assert.True(t, env.Success)
	assert.NotNil(t, env.Data)
}

func TestPatientGetByIDNotFound(t *testing.T) {
	svc := NewPatientService(&fakePatients{}, nil, logger.Discard(), nil)

	env := svc.GetByID(context.Background(), "missing")
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, "No se encontró el registro solicitado", env.ErrorMessage())
}

func TestPatientSearchTrimsTerm(t *testing.T) {
	repo := &fakePatients{}
	svc := NewPatientService(repo, nil, logger.Discard(), nil)

	env := svc.Search(context.Background(), "  garcía ")
	assert.True(t, env.Success)
	assert.Equal(t, "garcía", repo.term)
}

func TestPatientCreateRequiresNameAndPhone(t *testing.T) {
	repo := &fakePatients{}
	svc := NewPatientService(repo, nil, logger.Discard(), nil)

	env := svc.Create(context.Background(), &models.Patient{Nombre: models.StringPtr("Ana"), Telefono: models.StringPtr("  ")})
	assert.False(t, env.Success)
	assert.Equal(t, "Nombre y teléfono son campos obligatorios", env.ErrorMessage())
	assert.Nil(t, repo.created)
}

func TestPatientWritesAnnounceChanges(t *testing.T) {
	repo := &fakePatients{}
	pub := &recordingPublisher{}
	svc := NewPatientService(repo, pub, logger.Discard(), nil)
	ctx := context.Background()

	created := svc.Create(ctx, &models.Patient{Nombre: models.StringPtr("Ana"), Telefono: models.StringPtr("612345678")})
	require.True(t, created.Success)
	assert.Equal(t, "p-new", created.Data.ID)

	toggled := svc.ToggleStatus(ctx, "p-new", false)
	require.True(t, toggled.Success)
	assert.False(t, *toggled.Data.Activo)

	deleted := svc.Delete(ctx, "p-new")
	require.True(t, deleted.Success)
	assert.Nil(t, deleted.Data)

	require.Len(t, pub.events, 3)
	assert.Equal(t, realtime.OpInsert, pub.events[0].Op)
	assert.Equal(t, realtime.OpUpdate, pub.events[1].Op)
	assert.Equal(t, realtime.OpDelete, pub.events[2].Op)
	for _, ev := range pub.events {
		assert.Equal(t, "patients", ev.Table)
	}
}

func TestFailedWriteDoesNotAnnounce(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewPatientService(&fakePatients{err: errors.New("violates check constraint")}, pub, logger.Discard(), nil)

	env := svc.Update(context.Background(), "p-1", map[string]interface{}{"email": "x"})
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Empty(t, pub.events)
}
