package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
)

const docenteSelect = `SELECT p.id, p.nombre, p.apellido, p.email, p.fecha_nacimiento, d.nro_empleado, d.departamento, d.estado, d.usuario_alta, d.fecha_alta, d.usuario_modificacion, d.fecha_modificacion, d.usuario_baja, d.fecha_baja, d.motivo_baja FROM docente d JOIN persona p ON p.id = d.id`

// DocenteRepository manages persistence for docentes.
type DocenteRepository struct {
	db *sqlx.DB
}

// NewDocenteRepository constructs a DocenteRepository.
func NewDocenteRepository(db *sqlx.DB) *DocenteRepository {
	return &DocenteRepository{db: db}
}

// List returns every docente ordered by id.
func (r *DocenteRepository) List(ctx context.Context) ([]models.Docente, error) {
	docentes := []models.Docente{}
	if err := r.db.SelectContext(ctx, &docentes, docenteSelect+" ORDER BY p.id"); err != nil {
		return nil, fmt.Errorf("list docentes: %w", err)
	}
	return docentes, nil
}

// FindByID fetches a docente by ID.
func (r *DocenteRepository) FindByID(ctx context.Context, id int64) (*models.Docente, error) {
	var docente models.Docente
	if err := r.db.GetContext(ctx, &docente, docenteSelect+" WHERE p.id = $1", id); err != nil {
		return nil, err
	}
	return &docente, nil
}

// FindByNroEmpleado fetches a docente by employee number.
func (r *DocenteRepository) FindByNroEmpleado(ctx context.Context, nroEmpleado string) (*models.Docente, error) {
	var docente models.Docente
	if err := r.db.GetContext(ctx, &docente, docenteSelect+" WHERE d.nro_empleado = $1", nroEmpleado); err != nil {
		return nil, err
	}
	return &docente, nil
}

// ExistsByEmail checks if another persona uses the same email.
func (r *DocenteRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	found, err := personaEmailExists(ctx, r.db, email, excludeID)
	if err != nil {
		return false, fmt.Errorf("check docente email: %w", err)
	}
	return found, nil
}

// ExistsByNroEmpleado checks if another docente uses the same employee number.
func (r *DocenteRepository) ExistsByNroEmpleado(ctx context.Context, nroEmpleado string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM docente WHERE nro_empleado = $1"
	args := []interface{}{nroEmpleado}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query+" LIMIT 1", args...)
	if err != nil {
		return false, fmt.Errorf("check docente nro_empleado: %w", err)
	}
	return found, nil
}

// Create inserts the persona and docente rows in one transaction and sets the generated ID.
func (r *DocenteRepository) Create(ctx context.Context, docente *models.Docente) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create docente: %w", err)
	}
	defer rollback(tx, &err)

	if err = insertPersona(ctx, tx, &docente.Persona); err != nil {
		return err
	}
	const query = `INSERT INTO docente (id, nro_empleado, departamento, estado, usuario_alta, fecha_alta)
		VALUES (:id, :nro_empleado, :departamento, :estado, :usuario_alta, :fecha_alta)`
	if _, err = tx.NamedExecContext(ctx, query, docente); err != nil {
		return fmt.Errorf("create docente: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create docente: %w", err)
	}
	return nil
}

// Update persists identity, employment and audit fields.
func (r *DocenteRepository) Update(ctx context.Context, docente *models.Docente) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update docente: %w", err)
	}
	defer rollback(tx, &err)

	if err = updatePersona(ctx, tx, &docente.Persona); err != nil {
		return err
	}
	const query = `UPDATE docente SET nro_empleado = :nro_empleado, departamento = :departamento, estado = :estado,
		usuario_modificacion = :usuario_modificacion, fecha_modificacion = :fecha_modificacion WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, docente); err != nil {
		return fmt.Errorf("update docente: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update docente: %w", err)
	}
	return nil
}

// Deactivate marks a docente inactivo and stores the deactivation audit fields.
func (r *DocenteRepository) Deactivate(ctx context.Context, docente *models.Docente) error {
	const query = `UPDATE docente SET estado = :estado, usuario_baja = :usuario_baja, fecha_baja = :fecha_baja, motivo_baja = :motivo_baja WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, docente); err != nil {
		return fmt.Errorf("deactivate docente: %w", err)
	}
	return nil
}

// ListMaterias returns the materias assigned to the docente with the given employee number.
func (r *DocenteRepository) ListMaterias(ctx context.Context, nroEmpleado string) ([]dto.DocenteMateria, error) {
	const query = `SELECT m.id, m.nombre_materia, m.codigo_unico, m.creditos
		FROM docente_materia dm
		JOIN docente d ON d.id = dm.docente_id
		JOIN materia m ON m.id = dm.materia_id
		WHERE d.nro_empleado = $1
		ORDER BY m.codigo_unico`
	materias := []dto.DocenteMateria{}
	if err := r.db.SelectContext(ctx, &materias, query, nroEmpleado); err != nil {
		return nil, fmt.Errorf("list docente materias: %w", err)
	}
	return materias, nil
}
