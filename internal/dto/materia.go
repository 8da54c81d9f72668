package dto

// MateriaRequest defines the payload for creating or updating a materia.
type MateriaRequest struct {
	NombreMateria string  `json:"nombreMateria" validate:"required,notblank,max=100"`
	CodigoUnico   string  `json:"codigoUnico" validate:"required,notblank,max=20"`
	Creditos      *int    `json:"creditos"`
	Prerequisitos []int64 `json:"prerequisitos" validate:"omitempty,dive,gt=0"`
}

// AsignarDocentesRequest replaces the docentes assigned to a materia.
type AsignarDocentesRequest struct {
	DocentesNroEmpleado []string `json:"docentesNroEmpleado" validate:"dive,required"`
}
