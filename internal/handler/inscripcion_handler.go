package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/service"
	"github.com/noah-isme/universidad-api/pkg/response"
)

type inscripcionService interface {
	List(ctx context.Context) ([]models.Inscripcion, error)
	ListByEstudiante(ctx context.Context, estudianteID int64) ([]models.Inscripcion, error)
	ListByMateria(ctx context.Context, materiaID int64) ([]models.Inscripcion, error)
	Get(ctx context.Context, id int64) (*models.Inscripcion, error)
	Create(ctx context.Context, req dto.InscripcionRequest, actor string) (*models.Inscripcion, error)
	Update(ctx context.Context, id int64, req dto.InscripcionRequest, actor string) (*models.Inscripcion, error)
	Abandon(ctx context.Context, id int64, req dto.AbandonoRequest, actor string) (*models.Inscripcion, error)
	ExportRoster(ctx context.Context, materiaID int64, format string) (*service.ExportFile, error)
}

// InscripcionHandler exposes the enrollment workflow.
type InscripcionHandler struct {
	inscripciones inscripcionService
}

// NewInscripcionHandler constructs InscripcionHandler.
func NewInscripcionHandler(inscripciones inscripcionService) *InscripcionHandler {
	return &InscripcionHandler{inscripciones: inscripciones}
}

// List godoc
// @Summary List enrollments
// @Tags Inscripciones
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /inscripciones [get]
func (h *InscripcionHandler) List(c *gin.Context) {
	items, err := h.inscripciones.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ListByEstudiante godoc
// @Summary List enrollments of a student
// @Tags Inscripciones
// @Produce json
// @Param id path int true "Estudiante ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /inscripciones/estudiante/{id} [get]
func (h *InscripcionHandler) ListByEstudiante(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.inscripciones.ListByEstudiante(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ListByMateria godoc
// @Summary List enrollments of a materia
// @Tags Inscripciones
// @Produce json
// @Param id path int true "Materia ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /inscripciones/materia/{id} [get]
func (h *InscripcionHandler) ListByMateria(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.inscripciones.ListByMateria(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Export godoc
// @Summary Download the roster of a materia
// @Tags Inscripciones
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Materia ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inscripciones/materia/{id}/export [get]
func (h *InscripcionHandler) Export(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	file, err := h.inscripciones.ExportRoster(c.Request.Context(), id, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

// Get godoc
// @Summary Get enrollment
// @Tags Inscripciones
// @Produce json
// @Param id path int true "Inscripcion ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inscripciones/{id} [get]
func (h *InscripcionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.inscripciones.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Create godoc
// @Summary Enroll a student in a materia
// @Tags Inscripciones
// @Accept json
// @Produce json
// @Param payload body dto.InscripcionRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inscripciones [post]
func (h *InscripcionHandler) Create(c *gin.Context) {
	var req dto.InscripcionRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inscripciones.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update enrollment
// @Tags Inscripciones
// @Accept json
// @Produce json
// @Param id path int true "Inscripcion ID"
// @Param payload body dto.InscripcionRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inscripciones/{id} [put]
func (h *InscripcionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.InscripcionRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inscripciones.Update(c.Request.Context(), id, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Abandon godoc
// @Summary Mark an enrollment as abandoned
// @Tags Inscripciones
// @Accept json
// @Produce json
// @Param id path int true "Inscripcion ID"
// @Param payload body dto.AbandonoRequest true "Abandon payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inscripciones/{id}/abandonar [put]
func (h *InscripcionHandler) Abandon(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AbandonoRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.inscripciones.Abandon(c.Request.Context(), id, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}
