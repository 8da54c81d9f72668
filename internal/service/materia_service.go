package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/validation"
	"github.com/noah-isme/universidad-api/pkg/database"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

type materiaRepository interface {
	List(ctx context.Context) ([]models.Materia, error)
	FindByID(ctx context.Context, id int64) (*models.Materia, error)
	FindByCodigo(ctx context.Context, codigo string) (*models.Materia, error)
	ExistsByCodigo(ctx context.Context, codigo string, excludeID int64) (bool, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListPrerequisitoEdges(ctx context.Context) ([]models.PrerequisitoEdge, error)
	Create(ctx context.Context, materia *models.Materia) error
	Update(ctx context.Context, materia *models.Materia) error
	Delete(ctx context.Context, id int64) error
	ReplaceDocentes(ctx context.Context, materiaID int64, nroEmpleados []string) ([]string, error)
}

// MateriaService manages materias, their prerequisites and assigned docentes.
type MateriaService struct {
	repo      materiaRepository
	rules     *validation.MateriaValidator
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMateriaService constructs the service.
func NewMateriaService(repo materiaRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MateriaService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MateriaService{
		repo:      repo,
		rules:     validation.NewMateriaValidator(repo),
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// List returns every materia.
func (s *MateriaService) List(ctx context.Context) ([]models.Materia, error) {
	materias, err := readThrough(ctx, s.cache, keyMateriasAll, func() ([]models.Materia, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materias")
	}
	return materias, nil
}

// Get returns a materia by ID.
func (s *MateriaService) Get(ctx context.Context, id int64) (*models.Materia, error) {
	materia, err := readThrough(ctx, s.cache, keyMateriaID(id), func() (*models.Materia, error) {
		return s.repo.FindByID(ctx, id)
	})
	return materia, s.lookupError(err)
}

// GetByCodigo returns a materia by its unique code.
func (s *MateriaService) GetByCodigo(ctx context.Context, codigo string) (*models.Materia, error) {
	materia, err := readThrough(ctx, s.cache, keyMateriaCodigo(codigo), func() (*models.Materia, error) {
		return s.repo.FindByCodigo(ctx, codigo)
	})
	return materia, s.lookupError(err)
}

// Create stores a new materia with its prerequisites.
func (s *MateriaService) Create(ctx context.Context, req dto.MateriaRequest) (*models.Materia, error) {
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	req.Prerequisitos = uniqueIDs(req.Prerequisitos)
	if err := s.rules.Validate(ctx, &req, 0); err != nil {
		return nil, err
	}

	materia := &models.Materia{
		NombreMateria: strings.TrimSpace(req.NombreMateria),
		CodigoUnico:   strings.TrimSpace(req.CodigoUnico),
		Creditos:      *req.Creditos,
		Prerequisitos: req.Prerequisitos,
	}
	if err := s.repo.Create(ctx, materia); err != nil {
		return nil, writeError(err, msgMateriaDuplicada, "failed to create materia")
	}
	s.invalidate(ctx)
	s.logger.Info("materia created", zap.Int64("materia_id", materia.ID), zap.String("codigo_unico", materia.CodigoUnico))
	return s.reload(ctx, materia)
}

// Update overwrites a materia and replaces its prerequisites.
func (s *MateriaService) Update(ctx context.Context, id int64, req dto.MateriaRequest) (*models.Materia, error) {
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	req.Prerequisitos = uniqueIDs(req.Prerequisitos)
	if err := s.rules.Validate(ctx, &req, id); err != nil {
		return nil, err
	}

	existing.NombreMateria = strings.TrimSpace(req.NombreMateria)
	existing.CodigoUnico = strings.TrimSpace(req.CodigoUnico)
	existing.Creditos = *req.Creditos
	existing.Prerequisitos = req.Prerequisitos
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, writeError(err, msgMateriaDuplicada, "failed to update materia")
	}
	s.invalidate(ctx)
	return s.reload(ctx, existing)
}

// Delete removes a materia. Materias still referenced by enrollments or prerequisites yield CONFLICT.
func (s *MateriaService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.lookupError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "La materia tiene inscripciones o es prerequisito de otra materia.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete materia")
	}
	s.invalidate(ctx)
	s.logger.Info("materia deleted", zap.Int64("materia_id", id))
	return nil
}

// AsignarDocentes replaces the docentes teaching a materia.
func (s *MateriaService) AsignarDocentes(ctx context.Context, id int64, req dto.AsignarDocentesRequest) (*models.Materia, error) {
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	missing, err := s.repo.ReplaceDocentes(ctx, id, uniqueStrings(req.DocentesNroEmpleado))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign docentes")
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Docente no encontrado: "+strings.Join(missing, ", "))
	}
	s.invalidate(ctx)
	return s.reload(ctx, existing)
}

func (s *MateriaService) reload(ctx context.Context, fallback *models.Materia) (*models.Materia, error) {
	materia, err := s.repo.FindByID(ctx, fallback.ID)
	if err != nil {
		s.logger.Warn("reload materia failed", zap.Int64("materia_id", fallback.ID), zap.Error(err))
		return fallback, nil
	}
	return materia, nil
}

func (s *MateriaService) invalidate(ctx context.Context) {
	_ = s.cache.Evict(ctx, keyMateriasAll)
	_ = s.cache.Invalidate(ctx, patternMaterias)
	_ = s.cache.Invalidate(ctx, patternDocenteMaterias)
}

func (s *MateriaService) lookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "Materia no encontrada")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load materia")
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
