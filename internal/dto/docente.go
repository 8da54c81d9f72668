package dto

import "github.com/noah-isme/universidad-api/internal/models"

// DocenteRequest defines the payload for creating or updating a docente.
type DocenteRequest struct {
	PersonaRequest
	NroEmpleado         string       `json:"nroEmpleado" validate:"required,min=5,max=20"`
	Departamento        string       `json:"departamento" validate:"required,notblank"`
	Estado              string       `json:"estado" validate:"omitempty,oneof=activo inactivo"`
	UsuarioAlta         string       `json:"usuarioAlta" validate:"omitempty,min=3,max=50"`
	FechaAlta           *models.Date `json:"fechaAlta" validate:"omitempty,pastorpresent"`
	UsuarioModificacion string       `json:"usuarioModificacion" validate:"omitempty,min=3,max=50"`
}

// DocenteMateria lists a materia taught by a docente.
type DocenteMateria struct {
	ID            int64  `db:"id" json:"id"`
	NombreMateria string `db:"nombre_materia" json:"nombreMateria"`
	CodigoUnico   string `db:"codigo_unico" json:"codigoUnico"`
	Creditos      int    `db:"creditos" json:"creditos"`
}
