package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestPatientListOrdersNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "patients" ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "apellidos", "activo"}).
			AddRow("p-2", "Lucía", "Pérez", true).
			AddRow("p-1", "Ana", "García", nil))

	patients, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "p-2", patients[0].ID)
	assert.Equal(t, "García", models.StringValue(patients[1].Apellidos))
	assert.Nil(t, patients[1].Activo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "patients" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	patient, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, patient)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatientSearchUsesILikeAndLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	pattern := "%garcía%"
	mock.ExpectQuery(`FROM "patients" WHERE \(?nombre ILIKE \$1 OR apellidos ILIKE \$2 OR telefono ILIKE \$3 OR email ILIKE \$4 OR numero_historia ILIKE \$5\)? ORDER BY created_at DESC LIMIT \$6`).
		WithArgs(pattern, pattern, pattern, pattern, pattern, SearchLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "apellidos"}).AddRow("p-1", "García"))

	patients, err := repo.Search(context.Background(), "garcía")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_x`, escapeLike("50% off_x"))
}

func TestPatientCreateReturnsStoredRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectQuery(`INSERT INTO "patients"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "telefono", "numero_historia"}).
			AddRow("p-9", "Ana", "612345678", "HC-0009"))

	created, err := repo.Create(context.Background(), &models.Patient{
		Nombre:   models.StringPtr("Ana"),
		Telefono: models.StringPtr("612345678"),
	})
	require.NoError(t, err)
	assert.Equal(t, "p-9", created.ID)
	assert.Equal(t, "HC-0009", models.StringValue(created.NumeroHistoria))
	assert.NotNil(t, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientSetActiveStampsUpdatedAt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectQuery(`UPDATE "patients" SET "activo"=\$1,"updated_at"=\$2 WHERE id = \$3 RETURNING \*`).
		WithArgs(false, sqlmock.AnyArg(), "p-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "activo", "updated_at"}).AddRow("p-1", false, time.Now()))

	patient, err := repo.SetActive(context.Background(), "p-1", false)
	require.NoError(t, err)
	require.NotNil(t, patient.Activo)
	assert.False(t, *patient.Activo)
	assert.NotNil(t, patient.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientUpdateIgnoresProtectedColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectQuery(`UPDATE "patients" SET "email"=\$1,"updated_at"=\$2 WHERE id = \$3 RETURNING \*`).
		WithArgs("ana@clinica.es", sqlmock.AnyArg(), "p-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Update(context.Background(), "p-1", map[string]interface{}{
		"email":      "ana@clinica.es",
		"id":         "p-other",
		"created_at": time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectExec(`DELETE FROM "patients" WHERE id = \$1`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "p-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallListRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCallRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "appointment_calls" ORDER BY fecha_registro DESC LIMIT \$1`).
		WithArgs(RecentCallsLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "call_id", "procesado"}).AddRow(1, "call-1", false))

	calls, err := repo.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "call-1", models.StringValue(calls[0].CallID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallSetProcessedFiltersByCallID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCallRepository(db)

	mock.ExpectQuery(`UPDATE "appointment_calls" SET "procesado"=\$1 WHERE call_id = \$2 RETURNING \*`).
		WithArgs(true, "call-7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "call_id", "procesado"}).AddRow(7, "call-7", true))

	calls, err := repo.SetProcessed(context.Background(), "call-7", true)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Procesado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSelectKeepsColumnOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTableRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "appointment_calls" ORDER BY "fecha_registro" DESC LIMIT \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"procesado", "call_id", "nombre_completo"}).
			AddRow(true, []byte("call-1"), nil))

	result, err := repo.Select(context.Background(), TableQuery{
		Table:   "appointment_calls",
		Columns: []string{"procesado", "call_id", "nombre_completo"},
		Limit:   5,
		OrderBy: "fecha_registro",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"procesado", "call_id", "nombre_completo"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "call-1", result.Rows[0]["call_id"])
	assert.Nil(t, result.Rows[0]["nombre_completo"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSelectRejectsUnknownTable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTableRepository(db)

	_, err := repo.Select(context.Background(), TableQuery{Table: "users"})
	assert.Error(t, err)
	_, err = repo.Select(context.Background(), TableQuery{Table: "patients", OrderBy: "created_at; drop"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTableRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "perfiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := repo.Count(context.Background(), "perfiles")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestUserByEmailMissingIsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetUserByEmail(context.Background(), "nadie@clinica.es")
	require.NoError(t, err)
	assert.Nil(t, user)
}
