package service

import "fmt"

// DefaultActor fills audit fields when no operator is known.
const DefaultActor = "admin"

const (
	keyInscripcionesAll    = "inscripciones:all"
	patternInscripciones   = "inscripciones:*"
	keyDocentesAll         = "docentes:all"
	patternDocenteMaterias = "docente:materias:*"
	keyEstudiantesAll      = "estudiantes:all"
	keyMateriasAll         = "materias:all"
	patternMaterias        = "materia:*"
)

func keyInscripcion(id int64) string { return fmt.Sprintf("inscripcion:%d", id) }

func keyInscripcionesEstudiante(id int64) string {
	return fmt.Sprintf("inscripciones:estudiante:%d", id)
}

func keyInscripcionesMateria(id int64) string { return fmt.Sprintf("inscripciones:materia:%d", id) }

func keyDocenteID(id int64) string { return fmt.Sprintf("docente:id:%d", id) }

func keyDocenteNro(nro string) string { return "docente:nro:" + nro }

func keyDocenteMaterias(nro string) string { return "docente:materias:" + nro }

func keyEstudianteID(id int64) string { return fmt.Sprintf("estudiante:id:%d", id) }

func keyEstudianteNumero(numero string) string { return "estudiante:numero:" + numero }

func keyMateriaID(id int64) string { return fmt.Sprintf("materia:id:%d", id) }

func keyMateriaCodigo(codigo string) string { return "materia:codigo:" + codigo }

func actorOr(actor string) string {
	if actor == "" {
		return DefaultActor
	}
	return actor
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
