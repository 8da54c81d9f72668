package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/models"
)

var docenteCols = []string{"id", "nombre", "apellido", "email", "fecha_nacimiento", "nro_empleado", "departamento", "estado", "usuario_alta", "fecha_alta", "usuario_modificacion", "fecha_modificacion", "usuario_baja", "fecha_baja", "motivo_baja"}

func TestDocenteRepositoryFindByNroEmpleado(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	birth := time.Date(1985, 7, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM docente d JOIN persona p ON p.id = d.id WHERE d.nro_empleado = $1")).
		WithArgs("EMP12345").
		WillReturnRows(sqlmock.NewRows(docenteCols).
			AddRow(int64(1001), "Laura", "García", "laura.garcia@universidad.com", birth, "EMP12345", "Matemáticas", "activo", "admin", birth, nil, nil, nil, nil, nil))

	docente, err := repo.FindByNroEmpleado(context.Background(), "EMP12345")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), docente.ID)
	assert.Equal(t, "Laura García", docente.NombreCompleto())
	assert.Equal(t, models.EstadoActivo, docente.Estado)
	assert.Nil(t, docente.FechaBaja)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(docenteCols))

	_, err := repo.FindByID(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDocenteRepositoryCreateInsertsPersonaFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO persona").
		WithArgs("Laura", "García", "laura@universidad.com", "1985-07-15").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1001)))
	mock.ExpectExec("INSERT INTO docente").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	docente := &models.Docente{
		Persona:      models.Persona{Nombre: "Laura", Apellido: "García", Email: "laura@universidad.com", FechaNacimiento: models.NewDate(1985, time.July, 15)},
		NroEmpleado:  "EMP00001",
		Departamento: "Matemáticas",
		Estado:       models.EstadoActivo,
		Auditoria:    models.Auditoria{UsuarioAlta: "admin", FechaAlta: models.NewDate(2025, time.May, 18)},
	}
	require.NoError(t, repo.Create(context.Background(), docente))
	assert.Equal(t, int64(1001), docente.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepositoryExistsByNroEmpleadoExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM docente WHERE nro_empleado = $1 AND id <> $2 LIMIT 1")).
		WithArgs("EMP00001", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	found, err := repo.ExistsByNroEmpleado(context.Background(), "EMP00001", 7)
	require.NoError(t, err)
	assert.False(t, found)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM persona WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("laura@universidad.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	found, err = repo.ExistsByEmail(context.Background(), "laura@universidad.com", 0)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepositoryListMaterias(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.nro_empleado = $1")).
		WithArgs("EMP12345").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre_materia", "codigo_unico", "creditos"}).
			AddRow(int64(301), "Álgebra Lineal", "MAT101", 4))

	materias, err := repo.ListMaterias(context.Background(), "EMP12345")
	require.NoError(t, err)
	require.Len(t, materias, 1)
	assert.Equal(t, "MAT101", materias[0].CodigoUnico)
	assert.NoError(t, mock.ExpectationsWereMet())
}
