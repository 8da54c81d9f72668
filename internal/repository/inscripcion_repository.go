package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/pkg/database"
)

const inscripcionColumns = `id, estudiante_id, materia_id, fecha_inscripcion, estado, usuario_alta, usuario_baja, fecha_baja, motivo_baja`

// UniqueInscripcionIndex guards one enrollment per estudiante and materia.
const UniqueInscripcionIndex = "ux_inscripcion_estudiante_materia"

// InscripcionRepository manages enrollments. Writes run under row locks.
type InscripcionRepository struct {
	db *sqlx.DB
}

// NewInscripcionRepository constructs an InscripcionRepository.
func NewInscripcionRepository(db *sqlx.DB) *InscripcionRepository {
	return &InscripcionRepository{db: db}
}

// List returns every enrollment ordered by id.
func (r *InscripcionRepository) List(ctx context.Context) ([]models.Inscripcion, error) {
	return r.list(ctx, "SELECT "+inscripcionColumns+" FROM inscripcion ORDER BY id", "list inscripciones")
}

// ListByEstudiante returns the enrollments of a student.
func (r *InscripcionRepository) ListByEstudiante(ctx context.Context, estudianteID int64) ([]models.Inscripcion, error) {
	return r.list(ctx, "SELECT "+inscripcionColumns+" FROM inscripcion WHERE estudiante_id = $1 ORDER BY id", "list inscripciones by estudiante", estudianteID)
}

// ListByMateria returns the enrollments of a materia.
func (r *InscripcionRepository) ListByMateria(ctx context.Context, materiaID int64) ([]models.Inscripcion, error) {
	return r.list(ctx, "SELECT "+inscripcionColumns+" FROM inscripcion WHERE materia_id = $1 ORDER BY id", "list inscripciones by materia", materiaID)
}

func (r *InscripcionRepository) list(ctx context.Context, query, op string, args ...interface{}) ([]models.Inscripcion, error) {
	inscripciones := []models.Inscripcion{}
	if err := r.db.SelectContext(ctx, &inscripciones, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inscripciones, nil
}

// ListDetallesByMateria returns the roster of a materia joined with student names.
func (r *InscripcionRepository) ListDetallesByMateria(ctx context.Context, materiaID int64) ([]models.InscripcionDetalle, error) {
	const query = `SELECT i.id, i.estudiante_id, i.materia_id, i.fecha_inscripcion, i.estado, i.usuario_alta, i.usuario_baja, i.fecha_baja, i.motivo_baja,
		e.numero_inscripcion, p.nombre AS estudiante_nombre, p.apellido AS estudiante_apellido,
		m.codigo_unico AS codigo_materia, m.nombre_materia
		FROM inscripcion i
		JOIN estudiante e ON e.id = i.estudiante_id
		JOIN persona p ON p.id = e.id
		JOIN materia m ON m.id = i.materia_id
		WHERE i.materia_id = $1
		ORDER BY p.apellido, p.nombre`
	detalles := []models.InscripcionDetalle{}
	if err := r.db.SelectContext(ctx, &detalles, query, materiaID); err != nil {
		return nil, fmt.Errorf("list inscripcion roster: %w", err)
	}
	return detalles, nil
}

// FindByID fetches an enrollment by ID.
func (r *InscripcionRepository) FindByID(ctx context.Context, id int64) (*models.Inscripcion, error) {
	var inscripcion models.Inscripcion
	if err := r.db.GetContext(ctx, &inscripcion, "SELECT "+inscripcionColumns+" FROM inscripcion WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &inscripcion, nil
}

// ExistsByEstudianteAndMateria checks whether the pair already has an enrollment other than excludeID.
func (r *InscripcionRepository) ExistsByEstudianteAndMateria(ctx context.Context, estudianteID, materiaID, excludeID int64) (bool, error) {
	found, err := pairExists(ctx, r.db, estudianteID, materiaID, excludeID)
	if err != nil {
		return false, fmt.Errorf("check inscripcion: %w", err)
	}
	return found, nil
}

// Create inserts an enrollment while holding a lock on the student row, so two concurrent
// requests for the same pair cannot both pass the duplicate check.
func (r *InscripcionRepository) Create(ctx context.Context, inscripcion *models.Inscripcion) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create inscripcion: %w", err)
	}
	defer rollback(tx, &err)

	if err = lockReferences(ctx, tx, inscripcion.EstudianteID, inscripcion.MateriaID, 0); err != nil {
		return err
	}

	const query = `INSERT INTO inscripcion (estudiante_id, materia_id, fecha_inscripcion, estado, usuario_alta, usuario_baja, fecha_baja, motivo_baja)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err = tx.GetContext(ctx, &inscripcion.ID, query,
		inscripcion.EstudianteID, inscripcion.MateriaID, inscripcion.FechaInscripcion, inscripcion.Estado,
		inscripcion.UsuarioAlta, inscripcion.UsuarioBaja, inscripcion.FechaBaja, inscripcion.MotivoBaja,
	); err != nil {
		if database.IsUniqueViolation(err, UniqueInscripcionIndex) {
			err = ErrInscripcionDuplicada
			return err
		}
		return fmt.Errorf("create inscripcion: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create inscripcion: %w", err)
	}
	return nil
}

// UpdateLocked reads the enrollment with SELECT ... FOR UPDATE, lets apply mutate it and writes it back
// in the same transaction. When apply moves the enrollment to another pair the new references are
// locked and checked first. A missing enrollment yields sql.ErrNoRows.
func (r *InscripcionRepository) UpdateLocked(ctx context.Context, id int64, apply func(*models.Inscripcion) error) (updated *models.Inscripcion, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update inscripcion: %w", err)
	}
	defer rollback(tx, &err)

	var current models.Inscripcion
	if err = tx.GetContext(ctx, &current, "SELECT "+inscripcionColumns+" FROM inscripcion WHERE id = $1 FOR UPDATE", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock inscripcion: %w", err)
	}

	estudianteID, materiaID := current.EstudianteID, current.MateriaID
	if err = apply(&current); err != nil {
		return nil, err
	}
	current.ID = id

	if current.EstudianteID != estudianteID || current.MateriaID != materiaID {
		if err = lockReferences(ctx, tx, current.EstudianteID, current.MateriaID, id); err != nil {
			return nil, err
		}
	}

	const query = `UPDATE inscripcion SET estudiante_id = :estudiante_id, materia_id = :materia_id, fecha_inscripcion = :fecha_inscripcion,
		estado = :estado, usuario_alta = :usuario_alta, usuario_baja = :usuario_baja, fecha_baja = :fecha_baja, motivo_baja = :motivo_baja
		WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, &current); err != nil {
		if database.IsUniqueViolation(err, UniqueInscripcionIndex) {
			err = ErrInscripcionDuplicada
			return nil, err
		}
		return nil, fmt.Errorf("update inscripcion: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update inscripcion: %w", err)
	}
	return &current, nil
}

// lockReferences locks the student row, verifies the materia exists and that the pair is free.
func lockReferences(ctx context.Context, tx *sqlx.Tx, estudianteID, materiaID, excludeID int64) error {
	var locked int64
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM estudiante WHERE id = $1 FOR UPDATE`, estudianteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEstudianteNotFound
		}
		return fmt.Errorf("lock estudiante: %w", err)
	}

	found, err := exists(ctx, tx, `SELECT 1 FROM materia WHERE id = $1`, materiaID)
	if err != nil {
		return fmt.Errorf("check materia: %w", err)
	}
	if !found {
		return ErrMateriaNotFound
	}

	duplicate, err := pairExists(ctx, tx, estudianteID, materiaID, excludeID)
	if err != nil {
		return fmt.Errorf("check inscripcion: %w", err)
	}
	if duplicate {
		return ErrInscripcionDuplicada
	}
	return nil
}

func pairExists(ctx context.Context, db queryer, estudianteID, materiaID, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM inscripcion WHERE estudiante_id = $1 AND materia_id = $2"
	args := []interface{}{estudianteID, materiaID}
	if excludeID != 0 {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	return exists(ctx, db, query+" LIMIT 1", args...)
}
