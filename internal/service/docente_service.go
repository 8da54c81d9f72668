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
	"github.com/noah-isme/universidad-api/pkg/database"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

type docenteRepository interface {
	List(ctx context.Context) ([]models.Docente, error)
	FindByID(ctx context.Context, id int64) (*models.Docente, error)
	FindByNroEmpleado(ctx context.Context, nroEmpleado string) (*models.Docente, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByNroEmpleado(ctx context.Context, nroEmpleado string, excludeID int64) (bool, error)
	Create(ctx context.Context, docente *models.Docente) error
	Update(ctx context.Context, docente *models.Docente) error
	Deactivate(ctx context.Context, docente *models.Docente) error
	ListMaterias(ctx context.Context, nroEmpleado string) ([]dto.DocenteMateria, error)
}

// DocenteService handles docente business logic.
type DocenteService struct {
	repo      docenteRepository
	rules     *validation.DocenteValidator
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocenteService creates a new docente service.
func NewDocenteService(repo docenteRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DocenteService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocenteService{
		repo:      repo,
		rules:     validation.NewDocenteValidator(repo),
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// List returns all docentes.
func (s *DocenteService) List(ctx context.Context) ([]models.Docente, error) {
	docentes, err := readThrough(ctx, s.cache, keyDocentesAll, func() ([]models.Docente, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list docentes")
	}
	return docentes, nil
}

// Get returns a docente by ID.
func (s *DocenteService) Get(ctx context.Context, id int64) (*models.Docente, error) {
	docente, err := readThrough(ctx, s.cache, keyDocenteID(id), func() (*models.Docente, error) {
		return s.repo.FindByID(ctx, id)
	})
	return docente, s.lookupError(err)
}

// GetByNroEmpleado returns a docente by employee number.
func (s *DocenteService) GetByNroEmpleado(ctx context.Context, nro string) (*models.Docente, error) {
	docente, err := readThrough(ctx, s.cache, keyDocenteNro(nro), func() (*models.Docente, error) {
		return s.repo.FindByNroEmpleado(ctx, nro)
	})
	return docente, s.lookupError(err)
}

// ListMaterias returns the materias taught by the docente.
func (s *DocenteService) ListMaterias(ctx context.Context, nro string) ([]dto.DocenteMateria, error) {
	if _, err := s.GetByNroEmpleado(ctx, nro); err != nil {
		return nil, err
	}
	materias, err := readThrough(ctx, s.cache, keyDocenteMaterias(nro), func() ([]dto.DocenteMateria, error) {
		return s.repo.ListMaterias(ctx, nro)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list docente materias")
	}
	return materias, nil
}

// Create validates and stores a new docente.
func (s *DocenteService) Create(ctx context.Context, req dto.DocenteRequest, actor string) (*models.Docente, error) {
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	if err := s.rules.Validate(ctx, &req, 0); err != nil {
		return nil, err
	}

	docente := &models.Docente{
		Persona:      personaFromRequest(req.PersonaRequest),
		NroEmpleado:  req.NroEmpleado,
		Departamento: req.Departamento,
		Estado:       models.EstadoActivo,
		Auditoria: models.Auditoria{
			UsuarioAlta: req.UsuarioAlta,
			FechaAlta:   models.Today(),
		},
	}
	if req.Estado != "" {
		docente.Estado = models.EstadoPersona(req.Estado)
	}
	if docente.UsuarioAlta == "" {
		docente.UsuarioAlta = actorOr(actor)
	}
	if req.FechaAlta != nil && !req.FechaAlta.IsZero() {
		docente.FechaAlta = *req.FechaAlta
	}

	if err := s.repo.Create(ctx, docente); err != nil {
		return nil, writeError(err, msgDocenteDuplicado, "failed to create docente")
	}
	s.invalidate(ctx, docente, "")
	s.logger.Info("docente created", zap.Int64("docente_id", docente.ID), zap.String("nro_empleado", docente.NroEmpleado))
	return docente, nil
}

// Update overwrites a docente and stamps the modification audit fields.
func (s *DocenteService) Update(ctx context.Context, id int64, req dto.DocenteRequest, actor string) (*models.Docente, error) {
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

	previousNro := existing.NroEmpleado
	existing.Persona = personaFromRequest(req.PersonaRequest)
	existing.ID = id
	existing.NroEmpleado = req.NroEmpleado
	existing.Departamento = req.Departamento
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
		return nil, writeError(err, msgDocenteDuplicado, "failed to update docente")
	}
	s.invalidate(ctx, existing, previousNro)
	return existing, nil
}

// Deactivate soft deletes a docente.
func (s *DocenteService) Deactivate(ctx context.Context, id int64, req dto.BajaRequest, actor string) error {
	if err := validation.Check(s.validator, &req); err != nil {
		return err
	}
	docente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.lookupError(err)
	}

	applyBaja(&docente.Auditoria, req, actor)
	docente.Estado = models.EstadoInactivo
	if err := s.repo.Deactivate(ctx, docente); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate docente")
	}
	s.invalidate(ctx, docente, "")
	s.logger.Info("docente deactivated", zap.Int64("docente_id", id), zap.String("usuario_baja", *docente.UsuarioBaja))
	return nil
}

func (s *DocenteService) invalidate(ctx context.Context, docente *models.Docente, previousNro string) {
	keys := []string{keyDocentesAll, keyDocenteID(docente.ID), keyDocenteNro(docente.NroEmpleado), keyDocenteMaterias(docente.NroEmpleado)}
	renamed := previousNro != "" && previousNro != docente.NroEmpleado
	if renamed {
		keys = append(keys, keyDocenteNro(previousNro), keyDocenteMaterias(previousNro), keyMateriasAll)
	}
	_ = s.cache.Evict(ctx, keys...)
	if renamed {
		// materias embed the assigned employee numbers
		_ = s.cache.Invalidate(ctx, patternMaterias)
	}
}

func (s *DocenteService) lookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "Docente no encontrado")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load docente")
}

const (
	msgDocenteDuplicado    = "El email o el número de empleado ya están registrados."
	msgEstudianteDuplicado = "El email o el número de inscripción ya están registrados."
	msgMateriaDuplicada    = "El código de materia ya está registrado."
)

// writeError maps a unique index violation that slipped past the pre-check to UNIQUENESS_VIOLATION.
func writeError(err error, duplicate, internal string) error {
	if database.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrUniqueness.Code, appErrors.ErrUniqueness.Status, duplicate)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

func personaFromRequest(req dto.PersonaRequest) models.Persona {
	persona := models.Persona{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Email:    req.Email,
	}
	if req.FechaNacimiento != nil {
		persona.FechaNacimiento = *req.FechaNacimiento
	}
	return persona
}

func applyBaja(audit *models.Auditoria, req dto.BajaRequest, actor string) {
	usuario := req.UsuarioBaja
	if usuario == "" {
		usuario = actorOr(actor)
	}
	fecha := models.Today()
	if req.FechaBaja != nil && !req.FechaBaja.IsZero() {
		fecha = *req.FechaBaja
	}
	audit.UsuarioBaja = &usuario
	audit.FechaBaja = fecha.Ptr()
	audit.MotivoBaja = strPtr(req.MotivoBaja)
}
