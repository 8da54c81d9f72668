package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/universidad-api/internal/models"
)

const materiaSelect = `SELECT id, nombre_materia, codigo_unico, creditos FROM materia`

// MateriaRepository manages materias, their prerequisites and docente assignments.
type MateriaRepository struct {
	db *sqlx.DB
}

// NewMateriaRepository constructs a MateriaRepository.
func NewMateriaRepository(db *sqlx.DB) *MateriaRepository {
	return &MateriaRepository{db: db}
}

// List returns every materia with relations loaded.
func (r *MateriaRepository) List(ctx context.Context) ([]models.Materia, error) {
	materias := []models.Materia{}
	if err := r.db.SelectContext(ctx, &materias, materiaSelect+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list materias: %w", err)
	}
	if err := r.loadRelations(ctx, materias); err != nil {
		return nil, err
	}
	return materias, nil
}

// FindByID fetches a materia by ID.
func (r *MateriaRepository) FindByID(ctx context.Context, id int64) (*models.Materia, error) {
	return r.findOne(ctx, materiaSelect+" WHERE id = $1", id)
}

// FindByCodigo fetches a materia by its unique code.
func (r *MateriaRepository) FindByCodigo(ctx context.Context, codigo string) (*models.Materia, error) {
	return r.findOne(ctx, materiaSelect+" WHERE codigo_unico = $1", codigo)
}

func (r *MateriaRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Materia, error) {
	var materia models.Materia
	if err := r.db.GetContext(ctx, &materia, query, arg); err != nil {
		return nil, err
	}
	list := []models.Materia{materia}
	if err := r.loadRelations(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ExistsByCodigo checks if another materia uses the same code.
func (r *MateriaRepository) ExistsByCodigo(ctx context.Context, codigo string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM materia WHERE codigo_unico = $1"
	args := []interface{}{codigo}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query+" LIMIT 1", args...)
	if err != nil {
		return false, fmt.Errorf("check materia codigo: %w", err)
	}
	return found, nil
}

// ExistingIDs returns the subset of ids present in the materia table.
func (r *MateriaRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	if err := r.db.SelectContext(ctx, &found, `SELECT id FROM materia WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find materia ids: %w", err)
	}
	return found, nil
}

// ListPrerequisitoEdges returns the full prerequisite graph.
func (r *MateriaRepository) ListPrerequisitoEdges(ctx context.Context) ([]models.PrerequisitoEdge, error) {
	var edges []models.PrerequisitoEdge
	if err := r.db.SelectContext(ctx, &edges, `SELECT materia_id, prerequisito_id FROM materia_prerequisito`); err != nil {
		return nil, fmt.Errorf("list prerequisitos: %w", err)
	}
	return edges, nil
}

// Create inserts the materia and its prerequisites.
func (r *MateriaRepository) Create(ctx context.Context, materia *models.Materia) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create materia: %w", err)
	}
	defer rollback(tx, &err)

	const query = `INSERT INTO materia (nombre_materia, codigo_unico, creditos) VALUES ($1, $2, $3) RETURNING id`
	if err = tx.GetContext(ctx, &materia.ID, query, materia.NombreMateria, materia.CodigoUnico, materia.Creditos); err != nil {
		return fmt.Errorf("create materia: %w", err)
	}
	if err = replacePrerequisitos(ctx, tx, materia.ID, materia.Prerequisitos); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create materia: %w", err)
	}
	return nil
}

// Update overwrites scalar fields and replaces the prerequisite set.
func (r *MateriaRepository) Update(ctx context.Context, materia *models.Materia) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update materia: %w", err)
	}
	defer rollback(tx, &err)

	const query = `UPDATE materia SET nombre_materia = $2, codigo_unico = $3, creditos = $4 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, query, materia.ID, materia.NombreMateria, materia.CodigoUnico, materia.Creditos); err != nil {
		return fmt.Errorf("update materia: %w", err)
	}
	if err = replacePrerequisitos(ctx, tx, materia.ID, materia.Prerequisitos); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update materia: %w", err)
	}
	return nil
}

// Delete physically removes a materia. Referenced rows surface as a foreign key violation.
func (r *MateriaRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM materia WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete materia: %w", err)
	}
	return nil
}

// ReplaceDocentes sets the docentes assigned to a materia. It returns the employee numbers that matched no docente.
func (r *MateriaRepository) ReplaceDocentes(ctx context.Context, materiaID int64, nroEmpleados []string) (missing []string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assign docentes: %w", err)
	}
	defer rollback(tx, &err)

	type docenteRef struct {
		ID          int64  `db:"id"`
		NroEmpleado string `db:"nro_empleado"`
	}
	var refs []docenteRef
	if len(nroEmpleados) > 0 {
		if err = tx.SelectContext(ctx, &refs, `SELECT id, nro_empleado FROM docente WHERE nro_empleado = ANY($1)`, pq.Array(nroEmpleados)); err != nil {
			return nil, fmt.Errorf("find docentes: %w", err)
		}
	}
	known := make(map[string]int64, len(refs))
	for _, ref := range refs {
		known[ref.NroEmpleado] = ref.ID
	}
	for _, nro := range nroEmpleados {
		if _, ok := known[nro]; !ok {
			missing = append(missing, nro)
		}
	}
	if len(missing) > 0 {
		_ = tx.Rollback()
		return missing, nil
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM docente_materia WHERE materia_id = $1`, materiaID); err != nil {
		return nil, fmt.Errorf("clear docentes: %w", err)
	}
	for _, ref := range refs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO docente_materia (docente_id, materia_id) VALUES ($1, $2)`, ref.ID, materiaID); err != nil {
			return nil, fmt.Errorf("assign docente: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assign docentes: %w", err)
	}
	return nil, nil
}

func replacePrerequisitos(ctx context.Context, tx *sqlx.Tx, materiaID int64, prereqs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM materia_prerequisito WHERE materia_id = $1`, materiaID); err != nil {
		return fmt.Errorf("clear prerequisitos: %w", err)
	}
	for _, prereq := range prereqs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO materia_prerequisito (materia_id, prerequisito_id) VALUES ($1, $2)`, materiaID, prereq); err != nil {
			return fmt.Errorf("insert prerequisito: %w", err)
		}
	}
	return nil
}

func (r *MateriaRepository) loadRelations(ctx context.Context, materias []models.Materia) error {
	if len(materias) == 0 {
		return nil
	}
	ids := make([]int64, len(materias))
	index := make(map[int64]int, len(materias))
	for i := range materias {
		ids[i] = materias[i].ID
		index[materias[i].ID] = i
		materias[i].Prerequisitos = []int64{}
		materias[i].EsPrerequisitoDe = []int64{}
		materias[i].DocentesNroEmpleado = []string{}
	}

	var edges []models.PrerequisitoEdge
	const edgeQuery = `SELECT materia_id, prerequisito_id FROM materia_prerequisito WHERE materia_id = ANY($1) OR prerequisito_id = ANY($1) ORDER BY materia_id, prerequisito_id`
	if err := r.db.SelectContext(ctx, &edges, edgeQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load prerequisitos: %w", err)
	}
	for _, e := range edges {
		if i, ok := index[e.MateriaID]; ok {
			materias[i].Prerequisitos = append(materias[i].Prerequisitos, e.PrerequisitoID)
		}
		if i, ok := index[e.PrerequisitoID]; ok {
			materias[i].EsPrerequisitoDe = append(materias[i].EsPrerequisitoDe, e.MateriaID)
		}
	}

	var assigned []models.DocenteMateria
	const docenteQuery = `SELECT dm.materia_id, d.nro_empleado FROM docente_materia dm JOIN docente d ON d.id = dm.docente_id WHERE dm.materia_id = ANY($1) ORDER BY d.nro_empleado`
	if err := r.db.SelectContext(ctx, &assigned, docenteQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load materia docentes: %w", err)
	}
	for _, a := range assigned {
		if i, ok := index[a.MateriaID]; ok {
			materias[i].DocentesNroEmpleado = append(materias[i].DocentesNroEmpleado, a.NroEmpleado)
		}
	}
	return nil
}
