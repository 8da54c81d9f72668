package models

// Estudiante is a student registered in the university.
type Estudiante struct {
	Persona
	NumeroInscripcion string        `db:"numero_inscripcion" json:"numeroInscripcion"`
	Estado            EstadoPersona `db:"estado" json:"estado"`
	Auditoria
}
