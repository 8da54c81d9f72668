package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/universidad-api/internal/models"
)

const estudianteSelect = `SELECT p.id, p.nombre, p.apellido, p.email, p.fecha_nacimiento, e.numero_inscripcion, e.estado, e.usuario_alta, e.fecha_alta, e.usuario_modificacion, e.fecha_modificacion, e.usuario_baja, e.fecha_baja, e.motivo_baja FROM estudiante e JOIN persona p ON p.id = e.id`

// EstudianteRepository manages persistence for estudiantes.
type EstudianteRepository struct {
	db *sqlx.DB
}

// NewEstudianteRepository constructs an EstudianteRepository.
func NewEstudianteRepository(db *sqlx.DB) *EstudianteRepository {
	return &EstudianteRepository{db: db}
}

// List returns every estudiante ordered by id.
func (r *EstudianteRepository) List(ctx context.Context) ([]models.Estudiante, error) {
	estudiantes := []models.Estudiante{}
	if err := r.db.SelectContext(ctx, &estudiantes, estudianteSelect+" ORDER BY p.id"); err != nil {
		return nil, fmt.Errorf("list estudiantes: %w", err)
	}
	return estudiantes, nil
}

// FindByID fetches an estudiante by ID.
func (r *EstudianteRepository) FindByID(ctx context.Context, id int64) (*models.Estudiante, error) {
	var estudiante models.Estudiante
	if err := r.db.GetContext(ctx, &estudiante, estudianteSelect+" WHERE p.id = $1", id); err != nil {
		return nil, err
	}
	return &estudiante, nil
}

// FindByNumeroInscripcion fetches an estudiante by enrollment number.
func (r *EstudianteRepository) FindByNumeroInscripcion(ctx context.Context, numero string) (*models.Estudiante, error) {
	var estudiante models.Estudiante
	if err := r.db.GetContext(ctx, &estudiante, estudianteSelect+" WHERE e.numero_inscripcion = $1", numero); err != nil {
		return nil, err
	}
	return &estudiante, nil
}

// ExistsByEmail checks if another persona uses the same email.
func (r *EstudianteRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	found, err := personaEmailExists(ctx, r.db, email, excludeID)
	if err != nil {
		return false, fmt.Errorf("check estudiante email: %w", err)
	}
	return found, nil
}

// ExistsByNumeroInscripcion checks if another estudiante uses the same enrollment number.
func (r *EstudianteRepository) ExistsByNumeroInscripcion(ctx context.Context, numero string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM estudiante WHERE numero_inscripcion = $1"
	args := []interface{}{numero}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query+" LIMIT 1", args...)
	if err != nil {
		return false, fmt.Errorf("check estudiante numero_inscripcion: %w", err)
	}
	return found, nil
}

// Create inserts the persona and estudiante rows in one transaction.
func (r *EstudianteRepository) Create(ctx context.Context, estudiante *models.Estudiante) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create estudiante: %w", err)
	}
	defer rollback(tx, &err)

	if err = insertPersona(ctx, tx, &estudiante.Persona); err != nil {
		return err
	}
	const query = `INSERT INTO estudiante (id, numero_inscripcion, estado, usuario_alta, fecha_alta)
		VALUES (:id, :numero_inscripcion, :estado, :usuario_alta, :fecha_alta)`
	if _, err = tx.NamedExecContext(ctx, query, estudiante); err != nil {
		return fmt.Errorf("create estudiante: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create estudiante: %w", err)
	}
	return nil
}

// Update persists identity and audit fields.
func (r *EstudianteRepository) Update(ctx context.Context, estudiante *models.Estudiante) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update estudiante: %w", err)
	}
	defer rollback(tx, &err)

	if err = updatePersona(ctx, tx, &estudiante.Persona); err != nil {
		return err
	}
	const query = `UPDATE estudiante SET numero_inscripcion = :numero_inscripcion, estado = :estado,
		usuario_modificacion = :usuario_modificacion, fecha_modificacion = :fecha_modificacion WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, estudiante); err != nil {
		return fmt.Errorf("update estudiante: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update estudiante: %w", err)
	}
	return nil
}

// Deactivate marks an estudiante inactivo and stores the deactivation audit fields.
func (r *EstudianteRepository) Deactivate(ctx context.Context, estudiante *models.Estudiante) error {
	const query = `UPDATE estudiante SET estado = :estado, usuario_baja = :usuario_baja, fecha_baja = :fecha_baja, motivo_baja = :motivo_baja WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, estudiante); err != nil {
		return fmt.Errorf("deactivate estudiante: %w", err)
	}
	return nil
}
