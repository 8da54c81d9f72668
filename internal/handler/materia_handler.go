package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/pkg/response"
)

type materiaService interface {
	List(ctx context.Context) ([]models.Materia, error)
	Get(ctx context.Context, id int64) (*models.Materia, error)
	GetByCodigo(ctx context.Context, codigo string) (*models.Materia, error)
	Create(ctx context.Context, req dto.MateriaRequest) (*models.Materia, error)
	Update(ctx context.Context, id int64, req dto.MateriaRequest) (*models.Materia, error)
	Delete(ctx context.Context, id int64) error
	AsignarDocentes(ctx context.Context, id int64, req dto.AsignarDocentesRequest) (*models.Materia, error)
}

// MateriaHandler manages materia endpoints.
type MateriaHandler struct {
	materias materiaService
}

// NewMateriaHandler constructs the handler.
func NewMateriaHandler(materias materiaService) *MateriaHandler {
	return &MateriaHandler{materias: materias}
}

// List godoc
// @Summary List materias
// @Tags Materias
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /materias [get]
func (h *MateriaHandler) List(c *gin.Context) {
	materias, err := h.materias.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, materias)
}

// Get godoc
// @Summary Get materia by ID
// @Tags Materias
// @Produce json
// @Param id path int true "Materia ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materias/{id} [get]
func (h *MateriaHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	materia, err := h.materias.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, materia)
}

// GetByCodigo godoc
// @Summary Get materia by unique code
// @Tags Materias
// @Produce json
// @Param codigo path string true "Codigo unico"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materias/codigo/{codigo} [get]
func (h *MateriaHandler) GetByCodigo(c *gin.Context) {
	materia, err := h.materias.GetByCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, materia)
}

// Create godoc
// @Summary Create materia
// @Tags Materias
// @Accept json
// @Produce json
// @Param payload body dto.MateriaRequest true "Materia payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materias [post]
func (h *MateriaHandler) Create(c *gin.Context) {
	var req dto.MateriaRequest
	if !bindJSON(c, &req) {
		return
	}
	materia, err := h.materias.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, materia)
}

// Update godoc
// @Summary Update materia
// @Tags Materias
// @Accept json
// @Produce json
// @Param id path int true "Materia ID"
// @Param payload body dto.MateriaRequest true "Materia payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materias/{id} [put]
func (h *MateriaHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.MateriaRequest
	if !bindJSON(c, &req) {
		return
	}
	materia, err := h.materias.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, materia)
}

// Delete godoc
// @Summary Delete materia
// @Tags Materias
// @Param id path int true "Materia ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /materias/{id} [delete]
func (h *MateriaHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.materias.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AsignarDocentes godoc
// @Summary Replace the docentes teaching a materia
// @Tags Materias
// @Accept json
// @Produce json
// @Param id path int true "Materia ID"
// @Param payload body dto.AsignarDocentesRequest true "Employee numbers"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materias/{id}/docentes [put]
func (h *MateriaHandler) AsignarDocentes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AsignarDocentesRequest
	if !bindJSON(c, &req) {
		return
	}
	materia, err := h.materias.AsignarDocentes(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, materia)
}
