package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/validation"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

type estudianteRepository interface {
	List(ctx context.Context) ([]models.Estudiante, error)
	FindByID(ctx context.Context, id int64) (*models.Estudiante, error)
	FindByNumeroInscripcion(ctx context.Context, numero string) (*models.Estudiante, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByNumeroInscripcion(ctx context.Context, numero string, excludeID int64) (bool, error)
	Create(ctx context.Context, estudiante *models.Estudiante) error
	Update(ctx context.Context, estudiante *models.Estudiante) error
	Deactivate(ctx context.Context, estudiante *models.Estudiante) error
}

type inscripcionesByEstudiante interface {
	ListByEstudiante(ctx context.Context, estudianteID int64) ([]models.Inscripcion, error)
}

// EstudianteService handles estudiante business logic.
type EstudianteService struct {
	repo          estudianteRepository
	inscripciones inscripcionesByEstudiante
	rules         *validation.EstudianteValidator
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewEstudianteService creates a new estudiante service.
func NewEstudianteService(repo estudianteRepository, inscripciones inscripcionesByEstudiante, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EstudianteService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EstudianteService{
		repo:          repo,
		inscripciones: inscripciones,
		rules:         validation.NewEstudianteValidator(repo),
		cache:         cache,
		validator:     validate,
		logger:        logger,
	}
}

// List returns all estudiantes.
func (s *EstudianteService) List(ctx context.Context) ([]models.Estudiante, error) {
	estudiantes, err := readThrough(ctx, s.cache, keyEstudiantesAll, func() ([]models.Estudiante, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list estudiantes")
	}
	return estudiantes, nil
}

// Get returns an estudiante by ID.
func (s *EstudianteService) Get(ctx context.Context, id int64) (*models.Estudiante, error) {
	estudiante, err := readThrough(ctx, s.cache, keyEstudianteID(id), func() (*models.Estudiante, error) {
		return s.repo.FindByID(ctx, id)
	})
	return estudiante, s.lookupError(err)
}

// GetByNumeroInscripcion returns an estudiante by enrollment number.
func (s *EstudianteService) GetByNumeroInscripcion(ctx context.Context, numero string) (*models.Estudiante, error) {
	estudiante, err := readThrough(ctx, s.cache, keyEstudianteNumero(numero), func() (*models.Estudiante, error) {
		return s.repo.FindByNumeroInscripcion(ctx, numero)
	})
	return estudiante, s.lookupError(err)
}

// ListInscripciones returns the enrollments of an existing estudiante.
func (s *EstudianteService) ListInscripciones(ctx context.Context, id int64) ([]models.Inscripcion, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.inscripciones.ListByEstudiante(ctx, id)
}

// Create validates and stores a new estudiante.
func (s *EstudianteService) Create(ctx context.Context, req dto.EstudianteRequest, actor string) (*models.Estudiante, error) {
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	if err := s.rules.Validate(ctx, &req, 0); err != nil {
		return nil, err
	}

	estudiante := &models.Estudiante{
		Persona:           personaFromRequest(req.PersonaRequest),
		NumeroInscripcion: req.NumeroInscripcion,
		Estado:            models.EstadoActivo,
		Auditoria: models.Auditoria{
			UsuarioAlta: req.UsuarioAlta,
			FechaAlta:   models.Today(),
		},
	}
	if req.Estado != "" {
		estudiante.Estado = models.EstadoPersona(req.Estado)
	}
	if estudiante.UsuarioAlta == "" {
		estudiante.UsuarioAlta = actorOr(actor)
	}
	if req.FechaAlta != nil && !req.FechaAlta.IsZero() {
		estudiante.FechaAlta = *req.FechaAlta
	}

	if err := s.repo.Create(ctx, estudiante); err != nil {
		return nil, writeError(err, msgEstudianteDuplicado, "failed to create estudiante")
	}
	s.invalidate(ctx, estudiante, "")
	s.logger.Info("estudiante created", zap.Int64("estudiante_id", estudiante.ID), zap.String("numero_inscripcion", estudiante.NumeroInscripcion))
	return estudiante, nil
}

// Update overwrites an estudiante and stamps the modification audit fields.
func (s *EstudianteService) Update(ctx context.Context, id int64, req dto.EstudianteRequest, actor string) (*models.Estudiante, error) {
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if err := s.rules.Validate(ctx, &req, id); err != nil {
		return nil, err
	}

	previousNumero := existing.NumeroInscripcion
	existing.Persona = personaFromRequest(req.PersonaRequest)
	existing.ID = id
	existing.NumeroInscripcion = req.NumeroInscripcion
	if req.Estado != "" {
		existing.Estado = models.EstadoPersona(req.Estado)
	}
	modifier := req.UsuarioModificacion
	if modifier == "" {
		modifier = actorOr(actor)
	}
	existing.UsuarioModificacion = &modifier
	existing.FechaModificacion = models.Today().Ptr()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, writeError(err, msgEstudianteDuplicado, "failed to update estudiante")
	}
	s.invalidate(ctx, existing, previousNumero)
	return existing, nil
}

// Deactivate soft deletes an estudiante. Enrollments are left untouched.
func (s *EstudianteService) Deactivate(ctx context.Context, id int64, req dto.BajaRequest, actor string) error {
	if err := validation.Check(s.validator, &req); err != nil {
		return err
	}
	estudiante, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.lookupError(err)
	}

	applyBaja(&estudiante.Auditoria, req, actor)
	estudiante.Estado = models.EstadoInactivo
	if err := s.repo.Deactivate(ctx, estudiante); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate estudiante")
	}
	s.invalidate(ctx, estudiante, "")
	s.logger.Info("estudiante deactivated", zap.Int64("estudiante_id", id))
	return nil
}

func (s *EstudianteService) invalidate(ctx context.Context, estudiante *models.Estudiante, previousNumero string) {
	keys := []string{keyEstudiantesAll, keyEstudianteID(estudiante.ID), keyEstudianteNumero(estudiante.NumeroInscripcion)}
	if previousNumero != "" && previousNumero != estudiante.NumeroInscripcion {
		keys = append(keys, keyEstudianteNumero(previousNumero))
	}
	_ = s.cache.Evict(ctx, keys...)
}

func (s *EstudianteService) lookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "Estudiante no encontrado")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load estudiante")
}
