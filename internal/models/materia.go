package models

// Materia is a course. Relations are loaded separately from the row itself.
type Materia struct {
	ID                  int64    `db:"id" json:"id"`
	NombreMateria       string   `db:"nombre_materia" json:"nombreMateria"`
	CodigoUnico         string   `db:"codigo_unico" json:"codigoUnico"`
	Creditos            int      `db:"creditos" json:"creditos"`
	Prerequisitos       []int64  `db:"-" json:"prerequisitos"`
	EsPrerequisitoDe    []int64  `db:"-" json:"esPrerequisitoDe"`
	DocentesNroEmpleado []string `db:"-" json:"docentesNroEmpleado"`
}

// PrerequisitoEdge is a row of the materia_prerequisito table.
type PrerequisitoEdge struct {
	MateriaID      int64 `db:"materia_id"`
	PrerequisitoID int64 `db:"prerequisito_id"`
}

// DocenteMateria links a materia with an assigned docente.
type DocenteMateria struct {
	MateriaID   int64  `db:"materia_id"`
	NroEmpleado string `db:"nro_empleado"`
}
