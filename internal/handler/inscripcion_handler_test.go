package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/middleware"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/service"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

type inscripcionServiceMock struct {
	items      []models.Inscripcion
	item       *models.Inscripcion
	err        error
	file       *service.ExportFile
	lastID     int64
	lastActor  string
	lastFormat string
	lastCreate dto.InscripcionRequest
	lastAbando dto.AbandonoRequest
}

func (m *inscripcionServiceMock) List(ctx context.Context) ([]models.Inscripcion, error) {
	return m.items, m.err
}

func (m *inscripcionServiceMock) ListByEstudiante(ctx context.Context, id int64) ([]models.Inscripcion, error) {
	m.lastID = id
	return m.items, m.err
}

func (m *inscripcionServiceMock) ListByMateria(ctx context.Context, id int64) ([]models.Inscripcion, error) {
	m.lastID = id
	return m.items, m.err
}

func (m *inscripcionServiceMock) Get(ctx context.Context, id int64) (*models.Inscripcion, error) {
	m.lastID = id
	return m.item, m.err
}

func (m *inscripcionServiceMock) Create(ctx context.Context, req dto.InscripcionRequest, actor string) (*models.Inscripcion, error) {
	m.lastCreate = req
	m.lastActor = actor
	return m.item, m.err
}

func (m *inscripcionServiceMock) Update(ctx context.Context, id int64, req dto.InscripcionRequest, actor string) (*models.Inscripcion, error) {
	m.lastID = id
	m.lastCreate = req
	m.lastActor = actor
	return m.item, m.err
}

func (m *inscripcionServiceMock) Abandon(ctx context.Context, id int64, req dto.AbandonoRequest, actor string) (*models.Inscripcion, error) {
	m.lastID = id
	m.lastAbando = req
	m.lastActor = actor
	return m.item, m.err
}

func (m *inscripcionServiceMock) ExportRoster(ctx context.Context, id int64, format string) (*service.ExportFile, error) {
	m.lastID = id
	m.lastFormat = format
	return m.file, m.err
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestInscripcionHandlerCreate(t *testing.T) {
	mockSvc := &inscripcionServiceMock{item: &models.Inscripcion{
		ID:               10,
		EstudianteID:     2001,
		MateriaID:        301,
		FechaInscripcion: models.NewDate(2024, 3, 15),
		Estado:           models.InscripcionActiva,
		UsuarioAlta:      "operador1",
	}}
	handler := NewInscripcionHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/inscripciones", `{"idEstudiante":2001,"idMateria":301,"fechaInscripcion":"2024-03-15"}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 1, Username: "operador1", Rol: models.RolOperador})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "operador1", mockSvc.lastActor)
	assert.Equal(t, int64(2001), mockSvc.lastCreate.IDEstudiante)
	require.NotNil(t, mockSvc.lastCreate.FechaInscripcion)
	assert.Equal(t, "2024-03-15", mockSvc.lastCreate.FechaInscripcion.String())

	env := decodeEnvelope(t, w)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, float64(10), data["idInscripcion"])
	assert.Equal(t, "2024-03-15", data["fechaInscripcion"])
	assert.Equal(t, "activa", data["estado"])
}

func TestInscripcionHandlerCreateErrors(t *testing.T) {
	handler := NewInscripcionHandler(&inscripcionServiceMock{err: appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")})

	c, w := newTestContext(http.MethodPost, "/inscripciones", `{"idEstudiante":2001,"idMateria":301}`)
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_ENROLLMENT", env.Error.Code)
	assert.Equal(t, "El estudiante ya está inscrito en esta materia.", env.Error.Message)

	c, w = newTestContext(http.MethodPost, "/inscripciones", `{"idEstudiante":2001,"fechaInscripcion":"15/03/2024"}`)
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestInscripcionHandlerAbandon(t *testing.T) {
	motivo := "renuncia"
	mockSvc := &inscripcionServiceMock{item: &models.Inscripcion{ID: 10, Estado: models.InscripcionAbandonada, MotivoBaja: &motivo}}
	handler := NewInscripcionHandler(mockSvc)

	c, w := newTestContext(http.MethodPut, "/inscripciones/10/abandonar", `{"motivoBaja":"renuncia"}`)
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	handler.Abandon(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(10), mockSvc.lastID)
	assert.Equal(t, "renuncia", mockSvc.lastAbando.MotivoBaja)
	assert.Equal(t, "", mockSvc.lastActor)
	assert.Contains(t, w.Body.String(), `"estado":"abandonada"`)
}

func TestInscripcionHandlerGetNotFoundAndBadID(t *testing.T) {
	handler := NewInscripcionHandler(&inscripcionServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")})

	c, w := newTestContext(http.MethodGet, "/inscripciones/99", "")
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Inscripción no encontrada", decodeEnvelope(t, w).Error.Message)

	c, w = newTestContext(http.MethodGet, "/inscripciones/abc", "")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.Get(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "id", env.Error.Details[0].Field)
}

func TestInscripcionHandlerListByEstudiante(t *testing.T) {
	mockSvc := &inscripcionServiceMock{items: []models.Inscripcion{{ID: 1, EstudianteID: 2001}, {ID: 2, EstudianteID: 2001}}}
	handler := NewInscripcionHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/inscripciones/estudiante/2001", "")
	c.Params = gin.Params{{Key: "id", Value: "2001"}}
	handler.ListByEstudiante(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2001), mockSvc.lastID)
	var items []models.Inscripcion
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &items))
	assert.Len(t, items, 2)
}

func TestInscripcionHandlerExport(t *testing.T) {
	mockSvc := &inscripcionServiceMock{file: &service.ExportFile{
		Filename:    "inscritos_MAT101.csv",
		ContentType: "text/csv; charset=utf-8",
		Body:        []byte("idInscripcion\n1\n"),
	}}
	handler := NewInscripcionHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/inscripciones/materia/301/export?format=csv", "")
	c.Params = gin.Params{{Key: "id", Value: "301"}}
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.lastFormat)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inscritos_MAT101.csv")
	assert.Equal(t, "idInscripcion\n1\n", w.Body.String())
}
