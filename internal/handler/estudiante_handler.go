package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/pkg/response"
)

type estudianteService interface {
	List(ctx context.Context) ([]models.Estudiante, error)
	Get(ctx context.Context, id int64) (*models.Estudiante, error)
	GetByNumeroInscripcion(ctx context.Context, numero string) (*models.Estudiante, error)
	ListInscripciones(ctx context.Context, id int64) ([]models.Inscripcion, error)
	Create(ctx context.Context, req dto.EstudianteRequest, actor string) (*models.Estudiante, error)
	Update(ctx context.Context, id int64, req dto.EstudianteRequest, actor string) (*models.Estudiante, error)
	Deactivate(ctx context.Context, id int64, req dto.BajaRequest, actor string) error
}

// EstudianteHandler manages estudiante endpoints.
type EstudianteHandler struct {
	estudiantes estudianteService
}

// NewEstudianteHandler constructs the handler.
func NewEstudianteHandler(estudiantes estudianteService) *EstudianteHandler {
	return &EstudianteHandler{estudiantes: estudiantes}
}

// List godoc
// @Summary List estudiantes
// @Tags Estudiantes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /estudiantes [get]
func (h *EstudianteHandler) List(c *gin.Context) {
	estudiantes, err := h.estudiantes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, estudiantes)
}

// Get godoc
// @Summary Get estudiante by ID
// @Tags Estudiantes
// @Produce json
// @Param id path int true "Estudiante ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /estudiantes/{id} [get]
func (h *EstudianteHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	estudiante, err := h.estudiantes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, estudiante)
}

// GetByNumero godoc
// @Summary Get estudiante by enrollment number
// @Tags Estudiantes
// @Produce json
// @Param numero path string true "Numero de inscripcion"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /estudiantes/numero/{numero} [get]
func (h *EstudianteHandler) GetByNumero(c *gin.Context) {
	estudiante, err := h.estudiantes.GetByNumeroInscripcion(c.Request.Context(), c.Param("numero"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, estudiante)
}

// ListInscripciones godoc
// @Summary List the enrollments of an estudiante
// @Tags Estudiantes
// @Produce json
// @Param id path int true "Estudiante ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /estudiantes/{id}/inscripciones [get]
func (h *EstudianteHandler) ListInscripciones(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.estudiantes.ListInscripciones(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Create godoc
// @Summary Create estudiante
// @Tags Estudiantes
// @Accept json
// @Produce json
// @Param payload body dto.EstudianteRequest true "Estudiante payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /estudiantes [post]
func (h *EstudianteHandler) Create(c *gin.Context) {
	var req dto.EstudianteRequest
	if !bindJSON(c, &req) {
		return
	}
	estudiante, err := h.estudiantes.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, estudiante)
}

// Update godoc
// @Summary Update estudiante
// @Tags Estudiantes
// @Accept json
// @Produce json
// @Param id path int true "Estudiante ID"
// @Param payload body dto.EstudianteRequest true "Estudiante payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /estudiantes/{id} [put]
func (h *EstudianteHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.EstudianteRequest
	if !bindJSON(c, &req) {
		return
	}
	estudiante, err := h.estudiantes.Update(c.Request.Context(), id, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, estudiante)
}

// Delete godoc
// @Summary Deactivate estudiante
// @Tags Estudiantes
// @Accept json
// @Param id path int true "Estudiante ID"
// @Param payload body dto.BajaRequest false "Deactivation details"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /estudiantes/{id} [delete]
func (h *EstudianteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.BajaRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if err := h.estudiantes.Deactivate(c.Request.Context(), id, req, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
