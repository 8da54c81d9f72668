package models

// Docente is a teacher employed by the university.
type Docente struct {
	Persona
	NroEmpleado  string        `db:"nro_empleado" json:"nroEmpleado"`
	Departamento string        `db:"departamento" json:"departamento"`
	Estado       EstadoPersona `db:"estado" json:"estado"`
	Auditoria
}
