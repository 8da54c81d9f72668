package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/models"
)

func TestMateriaRepositoryFindByIDLoadsRelations(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMateriaRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nombre_materia, codigo_unico, creditos FROM materia WHERE id = $1")).
		WithArgs(int64(502)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre_materia", "codigo_unico", "creditos"}).AddRow(int64(502), "Cálculo II", "MAT202", 5))
	mock.ExpectQuery(regexp.QuoteMeta("FROM materia_prerequisito WHERE materia_id = ANY($1) OR prerequisito_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"materia_id", "prerequisito_id"}).
			AddRow(int64(502), int64(501)).
			AddRow(int64(503), int64(502)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM docente_materia dm JOIN docente d ON d.id = dm.docente_id")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"materia_id", "nro_empleado"}).AddRow(int64(502), "EMP12345"))

	materia, err := repo.FindByID(context.Background(), 502)
	require.NoError(t, err)
	assert.Equal(t, []int64{501}, materia.Prerequisitos)
	assert.Equal(t, []int64{503}, materia.EsPrerequisitoDe)
	assert.Equal(t, []string{"EMP12345"}, materia.DocentesNroEmpleado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMateriaRepositoryCreateWithPrerequisites(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMateriaRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO materia").
		WithArgs("Cálculo II", "MAT202", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(502)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM materia_prerequisito WHERE materia_id = $1")).
		WithArgs(int64(502)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO materia_prerequisito").
		WithArgs(int64(502), int64(501)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	materia := &models.Materia{NombreMateria: "Cálculo II", CodigoUnico: "MAT202", Creditos: 5, Prerequisitos: []int64{501}}
	require.NoError(t, repo.Create(context.Background(), materia))
	assert.Equal(t, int64(502), materia.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMateriaRepositoryReplaceDocentesReportsUnknown(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMateriaRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nro_empleado FROM docente WHERE nro_empleado = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nro_empleado"}).AddRow(int64(1001), "EMP12345"))
	mock.ExpectRollback()

	missing, err := repo.ReplaceDocentes(context.Background(), 502, []string{"EMP12345", "EMP99999"})
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP99999"}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMateriaRepositoryReplaceDocentes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMateriaRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nro_empleado FROM docente WHERE nro_empleado = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nro_empleado"}).AddRow(int64(1001), "EMP12345"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM docente_materia WHERE materia_id = $1")).
		WithArgs(int64(502)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO docente_materia").
		WithArgs(int64(1001), int64(502)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	missing, err := repo.ReplaceDocentes(context.Background(), 502, []string{"EMP12345"})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMateriaRepositoryPrerequisiteGraph(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMateriaRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT materia_id, prerequisito_id FROM materia_prerequisito")).
		WillReturnRows(sqlmock.NewRows([]string{"materia_id", "prerequisito_id"}).AddRow(int64(2), int64(1)))
	edges, err := repo.ListPrerequisitoEdges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.PrerequisitoEdge{{MateriaID: 2, PrerequisitoID: 1}}, edges)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM materia WHERE id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	ids, err := repo.ExistingIDs(context.Background(), []int64{1, 9})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
