package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/repository"
	"github.com/noah-isme/universidad-api/internal/validation"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
	"github.com/noah-isme/universidad-api/pkg/export"
)

const (
	opCreate  = "create"
	opUpdate  = "update"
	opAbandon = "abandon"
)

type inscripcionRepository interface {
	List(ctx context.Context) ([]models.Inscripcion, error)
	ListByEstudiante(ctx context.Context, estudianteID int64) ([]models.Inscripcion, error)
	ListByMateria(ctx context.Context, materiaID int64) ([]models.Inscripcion, error)
	ListDetallesByMateria(ctx context.Context, materiaID int64) ([]models.InscripcionDetalle, error)
	FindByID(ctx context.Context, id int64) (*models.Inscripcion, error)
	ExistsByEstudianteAndMateria(ctx context.Context, estudianteID, materiaID, excludeID int64) (bool, error)
	Create(ctx context.Context, inscripcion *models.Inscripcion) error
	UpdateLocked(ctx context.Context, id int64, apply func(*models.Inscripcion) error) (*models.Inscripcion, error)
}

type materiaReader interface {
	FindByID(ctx context.Context, id int64) (*models.Materia, error)
}

// ExportFile is a rendered roster ready to be downloaded.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// InscripcionService coordinates the enrollment workflow.
type InscripcionService struct {
	repo      inscripcionRepository
	materias  materiaReader
	rules     *validation.InscripcionValidator
	cache     *CacheService
	metrics   *MetricsService
	renderers map[string]export.Renderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInscripcionService constructs the enrollment service.
func NewInscripcionService(repo inscripcionRepository, materias materiaReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *InscripcionService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InscripcionService{
		repo:     repo,
		materias: materias,
		rules:    validation.NewInscripcionValidator(repo),
		cache:    cache,
		metrics:  metrics,
		renderers: map[string]export.Renderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
	}
}

// List returns every enrollment.
func (s *InscripcionService) List(ctx context.Context) ([]models.Inscripcion, error) {
	items, err := readThrough(ctx, s.cache, keyInscripcionesAll, func() ([]models.Inscripcion, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inscripciones")
	}
	return items, nil
}

// ListByEstudiante returns the enrollments of a student.
func (s *InscripcionService) ListByEstudiante(ctx context.Context, estudianteID int64) ([]models.Inscripcion, error) {
	items, err := readThrough(ctx, s.cache, keyInscripcionesEstudiante(estudianteID), func() ([]models.Inscripcion, error) {
		return s.repo.ListByEstudiante(ctx, estudianteID)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inscripciones by estudiante")
	}
	return items, nil
}

// ListByMateria returns the enrollments of a materia.
func (s *InscripcionService) ListByMateria(ctx context.Context, materiaID int64) ([]models.Inscripcion, error) {
	items, err := readThrough(ctx, s.cache, keyInscripcionesMateria(materiaID), func() ([]models.Inscripcion, error) {
		return s.repo.ListByMateria(ctx, materiaID)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inscripciones by materia")
	}
	return items, nil
}

// Get returns an enrollment by ID.
func (s *InscripcionService) Get(ctx context.Context, id int64) (*models.Inscripcion, error) {
	item, err := readThrough(ctx, s.cache, keyInscripcion(id), func() (*models.Inscripcion, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inscripcion")
	}
	return item, nil
}

// Create enrolls a student in a materia. Missing estado, fecha and usuarioAlta are defaulted.
func (s *InscripcionService) Create(ctx context.Context, req dto.InscripcionRequest, actor string) (result *models.Inscripcion, err error) {
	defer func() { s.metrics.ObserveInscripcion(opCreate, err) }()

	req.Estado = strings.ToLower(strings.TrimSpace(req.Estado))
	if req.Estado == "" {
		req.Estado = string(models.InscripcionActiva)
	}
	if req.FechaInscripcion == nil || req.FechaInscripcion.IsZero() {
		req.FechaInscripcion = models.Today().Ptr()
	}
	if req.UsuarioAlta == "" {
		req.UsuarioAlta = actorOr(actor)
	}
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	if err := s.rules.Validate(ctx, &req, 0); err != nil {
		return nil, err
	}

	inscripcion := &models.Inscripcion{
		EstudianteID:     req.IDEstudiante,
		MateriaID:        req.IDMateria,
		FechaInscripcion: *req.FechaInscripcion,
		Estado:           models.EstadoInscripcion(req.Estado),
		UsuarioAlta:      req.UsuarioAlta,
		UsuarioBaja:      strPtr(req.UsuarioBaja),
		FechaBaja:        req.FechaBaja,
		MotivoBaja:       strPtr(req.MotivoBaja),
	}
	if err := s.repo.Create(ctx, inscripcion); err != nil {
		return nil, s.mapWriteError(err, "failed to create inscripcion")
	}

	s.refreshCache(ctx, inscripcion)
	s.logger.Info("inscripcion created",
		zap.Int64("inscripcion_id", inscripcion.ID),
		zap.Int64("estudiante_id", inscripcion.EstudianteID),
		zap.Int64("materia_id", inscripcion.MateriaID),
		zap.String("usuario_alta", inscripcion.UsuarioAlta),
	)
	return inscripcion, nil
}

// Update overwrites an enrollment under a row lock. Fields absent from the request keep their stored values.
func (s *InscripcionService) Update(ctx context.Context, id int64, req dto.InscripcionRequest, actor string) (result *models.Inscripcion, err error) {
	defer func() { s.metrics.ObserveInscripcion(opUpdate, err) }()

	updated, err := s.repo.UpdateLocked(ctx, id, func(current *models.Inscripcion) error {
		merged := req
		merged.Estado = strings.ToLower(strings.TrimSpace(merged.Estado))
		if merged.Estado == "" {
			merged.Estado = string(current.Estado)
		}
		if merged.FechaInscripcion == nil || merged.FechaInscripcion.IsZero() {
			merged.FechaInscripcion = current.FechaInscripcion.Ptr()
		}
		if merged.UsuarioAlta == "" {
			merged.UsuarioAlta = current.UsuarioAlta
		}
		if err := validation.Check(s.validator, &merged); err != nil {
			return err
		}
		if err := validation.ValidarEstadoPermitido(merged.Estado); err != nil {
			return err
		}
		next := models.EstadoInscripcion(merged.Estado)
		if current.Estado == models.InscripcionAbandonada && next != models.InscripcionAbandonada {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "Una inscripción abandonada no puede volver a estar activa.")
		}

		current.EstudianteID = merged.IDEstudiante
		current.MateriaID = merged.IDMateria
		current.FechaInscripcion = *merged.FechaInscripcion
		current.Estado = next
		current.UsuarioAlta = merged.UsuarioAlta
		if merged.UsuarioBaja != "" {
			current.UsuarioBaja = strPtr(merged.UsuarioBaja)
		}
		if merged.FechaBaja != nil && !merged.FechaBaja.IsZero() {
			current.FechaBaja = merged.FechaBaja
		}
		if merged.MotivoBaja != "" {
			current.MotivoBaja = strPtr(merged.MotivoBaja)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError(err, "failed to update inscripcion")
	}

	s.refreshCache(ctx, updated)
	s.logger.Info("inscripcion updated", zap.Int64("inscripcion_id", id), zap.String("actor", actorOr(actor)))
	return updated, nil
}

// Abandon moves an active enrollment to abandonada while holding the row lock.
func (s *InscripcionService) Abandon(ctx context.Context, id int64, req dto.AbandonoRequest, actor string) (result *models.Inscripcion, err error) {
	defer func() { s.metrics.ObserveInscripcion(opAbandon, err) }()

	if req.UsuarioBaja == "" {
		req.UsuarioBaja = actorOr(actor)
	}
	if err := validation.Check(s.validator, &req); err != nil {
		return nil, err
	}
	fecha := models.Today()
	if req.FechaBaja != nil && !req.FechaBaja.IsZero() {
		fecha = *req.FechaBaja
	}

	updated, err := s.repo.UpdateLocked(ctx, id, func(current *models.Inscripcion) error {
		if current.Estado == models.InscripcionAbandonada {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "La inscripción ya está en estado 'abandonada'.")
		}
		current.Estado = models.InscripcionAbandonada
		current.UsuarioBaja = strPtr(req.UsuarioBaja)
		current.FechaBaja = fecha.Ptr()
		current.MotivoBaja = strPtr(req.MotivoBaja)
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError(err, "failed to abandon inscripcion")
	}

	s.refreshCache(ctx, updated)
	s.logger.Info("inscripcion abandoned",
		zap.Int64("inscripcion_id", id),
		zap.String("usuario_baja", req.UsuarioBaja),
		zap.String("motivo_baja", req.MotivoBaja),
	)
	return updated, nil
}

// ExportRoster renders the enrollments of a materia as csv or pdf.
func (s *InscripcionService) ExportRoster(ctx context.Context, materiaID int64, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "formato no soportado", []appErrors.FieldError{
			{Field: "format", Message: "El formato debe ser 'csv' o 'pdf'"},
		})
	}

	materia, err := s.materias.FindByID(ctx, materiaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Materia no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load materia")
	}
	detalles, err := s.repo.ListDetallesByMateria(ctx, materiaID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	body, err := renderer.Render(rosterDataset(materia, detalles))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("inscritos_%s.%s", materia.CodigoUnico, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func rosterDataset(materia *models.Materia, detalles []models.InscripcionDetalle) export.Dataset {
	rows := make([][]string, 0, len(detalles))
	for _, d := range detalles {
		fechaBaja := ""
		if d.FechaBaja != nil {
			fechaBaja = d.FechaBaja.String()
		}
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			d.NumeroInscripcion,
			d.EstudianteApellido,
			d.EstudianteNombre,
			d.FechaInscripcion.String(),
			string(d.Estado),
			fechaBaja,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Inscritos %s - %s", materia.CodigoUnico, materia.NombreMateria),
		Headers: []string{"idInscripcion", "numeroInscripcion", "apellido", "nombre", "fechaInscripcion", "estado", "fechaBaja"},
		Rows:    rows,
	}
}

func (s *InscripcionService) mapWriteError(err error, msg string) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")
	case errors.Is(err, repository.ErrEstudianteNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "Estudiante no encontrado")
	case errors.Is(err, repository.ErrMateriaNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "Materia no encontrada")
	case errors.Is(err, repository.ErrInscripcionDuplicada):
		return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
	}
}

func (s *InscripcionService) refreshCache(ctx context.Context, inscripcion *models.Inscripcion) {
	_ = s.cache.Invalidate(ctx, patternInscripciones)
	_ = s.cache.Set(ctx, keyInscripcion(inscripcion.ID), inscripcion, 0)
}
