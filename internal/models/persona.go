package models

// EstadoPersona is the lifecycle state of docentes and estudiantes.
type EstadoPersona string

const (
	EstadoActivo   EstadoPersona = "activo"
	EstadoInactivo EstadoPersona = "inactivo"
)

// Reasons accepted when a docente, estudiante or inscripcion is deactivated.
const (
	MotivoRenuncia  = "renuncia"
	MotivoDesercion = "desercion"
	MotivoTraslado  = "traslado"
)

// Persona holds the identity fields shared by docentes and estudiantes.
type Persona struct {
	ID              int64  `db:"id" json:"id"`
	Nombre          string `db:"nombre" json:"nombre"`
	Apellido        string `db:"apellido" json:"apellido"`
	Email           string `db:"email" json:"email"`
	FechaNacimiento Date   `db:"fecha_nacimiento" json:"fechaNacimiento"`
}

// NombreCompleto joins first and last name.
func (p Persona) NombreCompleto() string {
	if p.Apellido == "" {
		return p.Nombre
	}
	return p.Nombre + " " + p.Apellido
}

// Auditoria tracks who created, modified and deactivated a record.
type Auditoria struct {
	UsuarioAlta         string  `db:"usuario_alta" json:"usuarioAlta"`
	FechaAlta           Date    `db:"fecha_alta" json:"fechaAlta"`
	UsuarioModificacion *string `db:"usuario_modificacion" json:"usuarioModificacion,omitempty"`
	FechaModificacion   *Date   `db:"fecha_modificacion" json:"fechaModificacion,omitempty"`
	UsuarioBaja         *string `db:"usuario_baja" json:"usuarioBaja,omitempty"`
	FechaBaja           *Date   `db:"fecha_baja" json:"fechaBaja,omitempty"`
	MotivoBaja          *string `db:"motivo_baja" json:"motivoBaja,omitempty"`
}
