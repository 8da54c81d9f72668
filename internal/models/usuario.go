package models

import "time"

// Rol represents the available roles for the RBAC system.
type Rol string

const (
	RolAdmin    Rol = "ADMIN"
	RolOperador Rol = "OPERADOR"
	RolConsulta Rol = "CONSULTA"
)

// Valid reports whether the role is known.
func (r Rol) Valid() bool {
	switch r {
	case RolAdmin, RolOperador, RolConsulta:
		return true
	}
	return false
}

// Usuario is an operator account stored in the usuario table.
type Usuario struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Rol          Rol        `db:"rol" json:"rol"`
	Activo       bool       `db:"activo" json:"activo"`
	UltimoAcceso *time.Time `db:"ultimo_acceso" json:"ultimoAcceso,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
