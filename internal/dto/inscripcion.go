package dto

import "github.com/noah-isme/universidad-api/internal/models"

// InscripcionRequest is the payload of create and update. Missing defaults are filled before validation.
type InscripcionRequest struct {
	IDEstudiante     int64        `json:"idEstudiante" validate:"required,gt=0"`
	IDMateria        int64        `json:"idMateria" validate:"required,gt=0"`
	FechaInscripcion *models.Date `json:"fechaInscripcion" validate:"required,pastorpresent"`
	Estado           string       `json:"estado" validate:"required,oneof=activa abandonada"`
	UsuarioAlta      string       `json:"usuarioAlta" validate:"required,min=3,max=50"`
	UsuarioBaja      string       `json:"usuarioBaja" validate:"omitempty,min=3,max=50"`
	FechaBaja        *models.Date `json:"fechaBaja"`
	MotivoBaja       string       `json:"motivoBaja" validate:"omitempty,min=3,max=100"`
}

// AbandonoRequest is the payload of the abandon transition.
type AbandonoRequest struct {
	UsuarioBaja string       `json:"usuarioBaja" validate:"required,min=3,max=50"`
	FechaBaja   *models.Date `json:"fechaBaja" validate:"omitempty,futureorpresent"`
	MotivoBaja  string       `json:"motivoBaja" validate:"required,min=3,max=100"`
}
