package dto

import "github.com/noah-isme/universidad-api/internal/models"

// EstudianteRequest defines the payload for creating or updating an estudiante.
type EstudianteRequest struct {
	PersonaRequest
	NumeroInscripcion   string       `json:"numeroInscripcion" validate:"required,min=5,max=20"`
	Estado              string       `json:"estado" validate:"omitempty,oneof=activo inactivo"`
	UsuarioAlta         string       `json:"usuarioAlta" validate:"omitempty,min=3,max=50"`
	FechaAlta           *models.Date `json:"fechaAlta" validate:"omitempty,pastorpresent"`
	UsuarioModificacion string       `json:"usuarioModificacion" validate:"omitempty,min=3,max=50"`
}
