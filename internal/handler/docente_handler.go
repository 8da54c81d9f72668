package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/pkg/response"
)

type docenteService interface {
	List(ctx context.Context) ([]models.Docente, error)
	Get(ctx context.Context, id int64) (*models.Docente, error)
	GetByNroEmpleado(ctx context.Context, nro string) (*models.Docente, error)
	ListMaterias(ctx context.Context, nro string) ([]dto.DocenteMateria, error)
	Create(ctx context.Context, req dto.DocenteRequest, actor string) (*models.Docente, error)
	Update(ctx context.Context, id int64, req dto.DocenteRequest, actor string) (*models.Docente, error)
	Deactivate(ctx context.Context, id int64, req dto.BajaRequest, actor string) error
}

// DocenteHandler manages docente endpoints.
type DocenteHandler struct {
	docentes docenteService
}

// NewDocenteHandler constructs the handler.
func NewDocenteHandler(docentes docenteService) *DocenteHandler {
	return &DocenteHandler{docentes: docentes}
}

// List godoc
// @Summary List docentes
// @Tags Docentes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /docentes [get]
func (h *DocenteHandler) List(c *gin.Context) {
	docentes, err := h.docentes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, docentes)
}

// Get godoc
// @Summary Get docente by ID
// @Tags Docentes
// @Produce json
// @Param id path int true "Docente ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /docentes/{id} [get]
func (h *DocenteHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docente, err := h.docentes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, docente)
}

// GetByNroEmpleado godoc
// @Summary Get docente by employee number
// @Tags Docentes
// @Produce json
// @Param nroEmpleado path string true "Employee number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /docentes/empleado/{nroEmpleado} [get]
func (h *DocenteHandler) GetByNroEmpleado(c *gin.Context) {
	docente, err := h.docentes.GetByNroEmpleado(c.Request.Context(), c.Param("nroEmpleado"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, docente)
}

// ListMaterias godoc
// @Summary List the materias a docente teaches
// @Tags Docentes
// @Produce json
// @Param nroEmpleado path string true "Employee number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /docentes/{nroEmpleado}/materias [get]
func (h *DocenteHandler) ListMaterias(c *gin.Context) {
	// shares the :id segment with the other /docentes/:id routes
	materias, err := h.docentes.ListMaterias(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, materias)
}

// Create godoc
// @Summary Create docente
// @Tags Docentes
// @Accept json
// @Produce json
// @Param payload body dto.DocenteRequest true "Docente payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /docentes [post]
func (h *DocenteHandler) Create(c *gin.Context) {
	var req dto.DocenteRequest
	if !bindJSON(c, &req) {
		return
	}
	docente, err := h.docentes.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, docente)
}

// Update godoc
// @Summary Update docente
// @Tags Docentes
// @Accept json
// @Produce json
// @Param id path int true "Docente ID"
// @Param payload body dto.DocenteRequest true "Docente payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /docentes/{id} [put]
func (h *DocenteHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.DocenteRequest
	if !bindJSON(c, &req) {
		return
	}
	docente, err := h.docentes.Update(c.Request.Context(), id, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, docente)
}

// Delete godoc
// @Summary Deactivate docente
// @Tags Docentes
// @Accept json
// @Param id path int true "Docente ID"
// @Param payload body dto.BajaRequest false "Deactivation details"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /docentes/{id} [delete]
func (h *DocenteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.BajaRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if err := h.docentes.Deactivate(c.Request.Context(), id, req, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
