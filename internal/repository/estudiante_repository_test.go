package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/models"
)

func TestEstudianteRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEstudianteRepository(db)

	birth := time.Date(1995, 4, 20, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "nombre", "apellido", "email", "fecha_nacimiento", "numero_inscripcion", "estado", "usuario_alta", "fecha_alta", "usuario_modificacion", "fecha_modificacion", "usuario_baja", "fecha_baja", "motivo_baja"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM estudiante e JOIN persona p ON p.id = e.id ORDER BY p.id")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(2001), "Carlos", "Ramírez", "carlos@universidad.com", birth, "EST2025001", "activo", "admin", birth, nil, nil, nil, nil, nil))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EST2025001", list[0].NumeroInscripcion)
	assert.Equal(t, "1995-04-20", list[0].FechaNacimiento.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEstudianteRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEstudianteRepository(db)

	mock.ExpectExec("UPDATE estudiante SET estado").
		WillReturnResult(sqlmock.NewResult(0, 1))

	usuario, motivo := "admin", "traslado"
	est := &models.Estudiante{Persona: models.Persona{ID: 2001}, Estado: models.EstadoInactivo}
	est.UsuarioBaja = &usuario
	est.MotivoBaja = &motivo
	est.FechaBaja = models.NewDate(2025, time.July, 1).Ptr()
	require.NoError(t, repo.Deactivate(context.Background(), est))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEstudianteRepositoryUpdateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEstudianteRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE persona SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE estudiante SET").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Estudiante{Persona: models.Persona{ID: 2001}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
