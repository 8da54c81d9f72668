package dto

import "github.com/noah-isme/universidad-api/internal/models"

// PersonaRequest carries identity fields shared by docente and estudiante payloads.
type PersonaRequest struct {
	Nombre          string       `json:"nombre" validate:"required,notblank"`
	Apellido        string       `json:"apellido" validate:"required,notblank,min=3,max=50"`
	Email           string       `json:"email" validate:"required,email,max=100"`
	FechaNacimiento *models.Date `json:"fechaNacimiento" validate:"required,past"`
}

// BajaRequest is the optional body of a soft delete.
type BajaRequest struct {
	UsuarioBaja string       `json:"usuarioBaja" validate:"omitempty,min=3,max=50"`
	FechaBaja   *models.Date `json:"fechaBaja" validate:"omitempty,futureorpresent"`
	MotivoBaja  string       `json:"motivoBaja" validate:"omitempty,oneof=renuncia desercion traslado"`
}
