package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/models"
)

var inscripcionCols = []string{"id", "estudiante_id", "materia_id", "fecha_inscripcion", "estado", "usuario_alta", "usuario_baja", "fecha_baja", "motivo_baja"}

func newInscripcion() *models.Inscripcion {
	return &models.Inscripcion{
		EstudianteID:     2001,
		MateriaID:        301,
		FechaInscripcion: models.NewDate(2025, time.May, 18),
		Estado:           models.InscripcionActiva,
		UsuarioAlta:      "admin",
	}
}

func expectReferences(mock sqlmock.Sqlmock, estudianteID, materiaID int64) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM estudiante WHERE id = $1 FOR UPDATE")).
		WithArgs(estudianteID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(estudianteID))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM materia WHERE id = $1")).
		WithArgs(materiaID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
}

func TestInscripcionRepositoryCreateLocksStudentRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	expectReferences(mock, 2001, 301)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscripcion WHERE estudiante_id = $1 AND materia_id = $2 LIMIT 1")).
		WithArgs(int64(2001), int64(301)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("INSERT INTO inscripcion").
		WithArgs(int64(2001), int64(301), "2025-05-18", "activa", "admin", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	ins := newInscripcion()
	require.NoError(t, repo.Create(context.Background(), ins))
	assert.Equal(t, int64(11), ins.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	expectReferences(mock, 2001, 301)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscripcion WHERE estudiante_id = $1 AND materia_id = $2 LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newInscripcion())
	assert.ErrorIs(t, err, ErrInscripcionDuplicada)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	expectReferences(mock, 2001, 301)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscripcion WHERE estudiante_id = $1 AND materia_id = $2 LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("INSERT INTO inscripcion").
		WillReturnError(&pq.Error{Code: "23505", Constraint: UniqueInscripcionIndex})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newInscripcion())
	assert.ErrorIs(t, err, ErrInscripcionDuplicada)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryCreateMissingReferences(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM estudiante WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()
	assert.ErrorIs(t, repo.Create(context.Background(), newInscripcion()), ErrEstudianteNotFound)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM estudiante WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2001))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM materia WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()
	assert.ErrorIs(t, repo.Create(context.Background(), newInscripcion()), ErrMateriaNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func lockedRow() *sqlmock.Rows {
	return sqlmock.NewRows(inscripcionCols).
		AddRow(int64(11), int64(2001), int64(301), time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC), "activa", "admin", nil, nil, nil)
}

func TestInscripcionRepositoryUpdateLockedAbandon(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscripcion WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(11)).
		WillReturnRows(lockedRow())
	mock.ExpectExec("UPDATE inscripcion SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	motivo, usuario := "renuncia", "admin"
	updated, err := repo.UpdateLocked(context.Background(), 11, func(ins *models.Inscripcion) error {
		ins.Estado = models.InscripcionAbandonada
		ins.MotivoBaja = &motivo
		ins.UsuarioBaja = &usuario
		ins.FechaBaja = models.NewDate(2025, time.July, 1).Ptr()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.InscripcionAbandonada, updated.Estado)
	assert.Equal(t, int64(2001), updated.EstudianteID)
	assert.Equal(t, "2025-05-18", updated.FechaInscripcion.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryUpdateLockedApplyError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscripcion WHERE id = $1 FOR UPDATE")).
		WillReturnRows(lockedRow())
	mock.ExpectRollback()

	sentinel := errors.New("rejected")
	_, err := repo.UpdateLocked(context.Background(), 11, func(*models.Inscripcion) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryUpdateLockedNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscripcion WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(inscripcionCols))
	mock.ExpectRollback()

	_, err := repo.UpdateLocked(context.Background(), 99, func(*models.Inscripcion) error { return nil })
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryUpdateLockedRejectsTakenPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscripcion WHERE id = $1 FOR UPDATE")).
		WillReturnRows(lockedRow())
	expectReferences(mock, 2001, 302)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscripcion WHERE estudiante_id = $1 AND materia_id = $2 AND id <> $3 LIMIT 1")).
		WithArgs(int64(2001), int64(302), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.UpdateLocked(context.Background(), 11, func(ins *models.Inscripcion) error {
		ins.MateriaID = 302
		return nil
	})
	assert.ErrorIs(t, err, ErrInscripcionDuplicada)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryListByEstudiante(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	day := time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscripcion WHERE estudiante_id = $1 ORDER BY id")).
		WithArgs(int64(2001)).
		WillReturnRows(sqlmock.NewRows(inscripcionCols).
			AddRow(int64(1), int64(2001), int64(301), day, "activa", "admin", nil, nil, nil).
			AddRow(int64(2), int64(2001), int64(302), day, "abandonada", "admin", "admin", day, "traslado"))

	list, err := repo.ListByEstudiante(context.Background(), 2001)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[1].MotivoBaja)
	assert.Equal(t, "traslado", *list[1].MotivoBaja)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscripcionRepositoryExistsByPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInscripcionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscripcion WHERE estudiante_id = $1 AND materia_id = $2 LIMIT 1")).
		WithArgs(int64(2001), int64(301)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	found, err := repo.ExistsByEstudianteAndMateria(context.Background(), 2001, 301, 0)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
