package models

// EstadoInscripcion represents the lifecycle of an enrollment.
type EstadoInscripcion string

const (
	InscripcionActiva     EstadoInscripcion = "activa"
	InscripcionAbandonada EstadoInscripcion = "abandonada"
)

// Valid reports whether the state is one of the known values.
func (e EstadoInscripcion) Valid() bool {
	return e == InscripcionActiva || e == InscripcionAbandonada
}

// Inscripcion captures a student's enrollment in a materia.
type Inscripcion struct {
	ID               int64             `db:"id" json:"idInscripcion"`
	EstudianteID     int64             `db:"estudiante_id" json:"idEstudiante"`
	MateriaID        int64             `db:"materia_id" json:"idMateria"`
	FechaInscripcion Date              `db:"fecha_inscripcion" json:"fechaInscripcion"`
	Estado           EstadoInscripcion `db:"estado" json:"estado"`
	UsuarioAlta      string            `db:"usuario_alta" json:"usuarioAlta"`
	UsuarioBaja      *string           `db:"usuario_baja" json:"usuarioBaja,omitempty"`
	FechaBaja        *Date             `db:"fecha_baja" json:"fechaBaja,omitempty"`
	MotivoBaja       *string           `db:"motivo_baja" json:"motivoBaja,omitempty"`
}

// InscripcionDetalle enriches an Inscripcion with student and course info for rosters.
type InscripcionDetalle struct {
	Inscripcion
	NumeroInscripcion  string `db:"numero_inscripcion" json:"numeroInscripcion"`
	EstudianteNombre   string `db:"estudiante_nombre" json:"estudianteNombre"`
	EstudianteApellido string `db:"estudiante_apellido" json:"estudianteApellido"`
	CodigoMateria      string `db:"codigo_materia" json:"codigoMateria"`
	NombreMateria      string `db:"nombre_materia" json:"nombreMateria"`
}
