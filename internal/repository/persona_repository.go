package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/universidad-api/internal/models"
)

// Sentinel errors returned by locked write paths so callers can tell which reference was missing.
var (
	ErrEstudianteNotFound   = errors.New("estudiante not found")
	ErrMateriaNotFound      = errors.New("materia not found")
	ErrInscripcionDuplicada = errors.New("inscripcion already exists for estudiante and materia")
)

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func insertPersona(ctx context.Context, tx *sqlx.Tx, p *models.Persona) error {
	const query = `INSERT INTO persona (nombre, apellido, email, fecha_nacimiento) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := tx.GetContext(ctx, &p.ID, query, p.Nombre, p.Apellido, p.Email, p.FechaNacimiento); err != nil {
		return fmt.Errorf("insert persona: %w", err)
	}
	return nil
}

func updatePersona(ctx context.Context, tx *sqlx.Tx, p *models.Persona) error {
	const query = `UPDATE persona SET nombre = $2, apellido = $3, email = $4, fecha_nacimiento = $5 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, p.ID, p.Nombre, p.Apellido, p.Email, p.FechaNacimiento); err != nil {
		return fmt.Errorf("update persona: %w", err)
	}
	return nil
}

// personaEmailExists checks every persona, so docentes and estudiantes share one email space.
func personaEmailExists(ctx context.Context, db queryer, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM persona WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	return exists(ctx, db, query+" LIMIT 1", args...)
}

func exists(ctx context.Context, db queryer, query string, args ...interface{}) (bool, error) {
	var found int
	if err := db.GetContext(ctx, &found, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func rollback(tx *sqlx.Tx, err *error) {
	if *err != nil {
		_ = tx.Rollback()
	}
}
