package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/middleware"
	"github.com/noah-isme/universidad-api/internal/models"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

type docenteServiceMock struct {
	docente     *models.Docente
	materias    []dto.DocenteMateria
	err         error
	lastNro     string
	lastID      int64
	lastActor   string
	lastRequest dto.DocenteRequest
	lastBaja    dto.BajaRequest
}

func (m *docenteServiceMock) List(ctx context.Context) ([]models.Docente, error) {
	if m.docente == nil {
		return []models.Docente{}, m.err
	}
	return []models.Docente{*m.docente}, m.err
}

func (m *docenteServiceMock) Get(ctx context.Context, id int64) (*models.Docente, error) {
	m.lastID = id
	return m.docente, m.err
}

func (m *docenteServiceMock) GetByNroEmpleado(ctx context.Context, nro string) (*models.Docente, error) {
	m.lastNro = nro
	return m.docente, m.err
}

func (m *docenteServiceMock) ListMaterias(ctx context.Context, nro string) ([]dto.DocenteMateria, error) {
	m.lastNro = nro
	return m.materias, m.err
}

func (m *docenteServiceMock) Create(ctx context.Context, req dto.DocenteRequest, actor string) (*models.Docente, error) {
	m.lastRequest = req
	m.lastActor = actor
	return m.docente, m.err
}

func (m *docenteServiceMock) Update(ctx context.Context, id int64, req dto.DocenteRequest, actor string) (*models.Docente, error) {
	m.lastID = id
	m.lastRequest = req
	m.lastActor = actor
	return m.docente, m.err
}

func (m *docenteServiceMock) Deactivate(ctx context.Context, id int64, req dto.BajaRequest, actor string) error {
	m.lastID = id
	m.lastBaja = req
	m.lastActor = actor
	return m.err
}

const docentePayload = `{"nombre":"Lucía","apellido":"Fernández","email":"lucia@universidad.edu","fechaNacimiento":"1980-05-04","nroEmpleado":"EMP00001","departamento":"Matemáticas"}`

func TestDocenteHandlerCreate(t *testing.T) {
	mockSvc := &docenteServiceMock{docente: &models.Docente{Persona: models.Persona{ID: 1, Nombre: "Lucía"}, NroEmpleado: "EMP00001"}}
	handler := NewDocenteHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/docentes", docentePayload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Username: "rrhh", Rol: models.RolAdmin})
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rrhh", mockSvc.lastActor)
	assert.Equal(t, "EMP00001", mockSvc.lastRequest.NroEmpleado)
	assert.Equal(t, "Lucía", mockSvc.lastRequest.Nombre)
	assert.Equal(t, "1980-05-04", mockSvc.lastRequest.FechaNacimiento.String())
	assert.Contains(t, w.Body.String(), `"nroEmpleado":"EMP00001"`)
}

func TestDocenteHandlerCreateUniqueness(t *testing.T) {
	handler := NewDocenteHandler(&docenteServiceMock{err: appErrors.Clone(appErrors.ErrUniqueness, "El número de empleado ya existe: EMP00001")})

	c, w := newTestContext(http.MethodPost, "/docentes", docentePayload)
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "UNIQUENESS_VIOLATION", env.Error.Code)
	assert.Equal(t, "El número de empleado ya existe: EMP00001", env.Error.Message)
}

func TestDocenteHandlerDeleteWithAndWithoutBody(t *testing.T) {
	mockSvc := &docenteServiceMock{}
	handler := NewDocenteHandler(mockSvc)

	c, w := newTestContext(http.MethodDelete, "/docentes/4", "")
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(4), mockSvc.lastID)
	assert.Empty(t, mockSvc.lastBaja.MotivoBaja)

	c, w = newTestContext(http.MethodDelete, "/docentes/4", `{"motivoBaja":"traslado","usuarioBaja":"rrhh"}`)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "traslado", mockSvc.lastBaja.MotivoBaja)
	assert.Equal(t, "rrhh", mockSvc.lastBaja.UsuarioBaja)

	mockSvc.err = appErrors.Clone(appErrors.ErrNotFound, "Docente no encontrado")
	c, w = newTestContext(http.MethodDelete, "/docentes/5", "")
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	handler.Delete(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocenteHandlerLookups(t *testing.T) {
	mockSvc := &docenteServiceMock{
		docente:  &models.Docente{Persona: models.Persona{ID: 1}, NroEmpleado: "EMP00001"},
		materias: []dto.DocenteMateria{{ID: 301, CodigoUnico: "MAT101"}},
	}
	handler := NewDocenteHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/docentes/empleado/EMP00001", "")
	c.Params = gin.Params{{Key: "nroEmpleado", Value: "EMP00001"}}
	handler.GetByNroEmpleado(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EMP00001", mockSvc.lastNro)

	c, w = newTestContext(http.MethodGet, "/docentes/EMP00002/materias", "")
	c.Params = gin.Params{{Key: "id", Value: "EMP00002"}}
	handler.ListMaterias(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EMP00002", mockSvc.lastNro)
	assert.Contains(t, w.Body.String(), `"codigoUnico":"MAT101"`)

	c, w = newTestContext(http.MethodGet, "/docentes", "")
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
}
