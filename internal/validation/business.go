package validation

import (
	"context"
	"strings"

	"github.com/noah-isme/universidad-api/internal/dto"
	"github.com/noah-isme/universidad-api/internal/models"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

// BlockedEmailDomains cannot be used by docentes.
var BlockedEmailDomains = []string{"dominiobloqueado.com", "spam.com"}

type docenteLookup interface {
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByNroEmpleado(ctx context.Context, nroEmpleado string, excludeID int64) (bool, error)
}

// DocenteValidator applies the rules that need the record store.
type DocenteValidator struct {
	repo docenteLookup
}

// NewDocenteValidator constructs a DocenteValidator.
func NewDocenteValidator(repo docenteLookup) *DocenteValidator {
	return &DocenteValidator{repo: repo}
}

// Validate checks email, employee number and required text fields. excludeID skips the record being updated.
func (v *DocenteValidator) Validate(ctx context.Context, req *dto.DocenteRequest, excludeID int64) error {
	if strings.TrimSpace(req.Nombre) == "" {
		return fieldError("nombre", "El nombre del docente no puede estar vacío o nulo.")
	}
	if strings.TrimSpace(req.Apellido) == "" {
		return fieldError("apellido", "El apellido del docente es obligatorio y no puede estar vacío.")
	}
	if strings.TrimSpace(req.Departamento) == "" {
		return fieldError("departamento", "El departamento es obligatorio.")
	}
	if blockedDomain(req.Email) {
		return fieldError("email", "El dominio de email no está permitido.")
	}
	exists, err := v.repo.ExistsByEmail(ctx, req.Email, excludeID)
	if err != nil {
		return internal(err, "failed to check email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrUniqueness, "Ya existe un docente con este email.")
	}
	exists, err = v.repo.ExistsByNroEmpleado(ctx, req.NroEmpleado, excludeID)
	if err != nil {
		return internal(err, "failed to check employee number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrUniqueness, "El número de empleado ya existe: "+req.NroEmpleado)
	}
	return nil
}

func blockedDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, blocked := range BlockedEmailDomains {
		if domain == blocked {
			return true
		}
	}
	return false
}

type estudianteLookup interface {
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsByNumeroInscripcion(ctx context.Context, numero string, excludeID int64) (bool, error)
}

// EstudianteValidator enforces estudiante uniqueness rules.
type EstudianteValidator struct {
	repo estudianteLookup
}

// NewEstudianteValidator constructs an EstudianteValidator.
func NewEstudianteValidator(repo estudianteLookup) *EstudianteValidator {
	return &EstudianteValidator{repo: repo}
}

// Validate checks that email and numeroInscripcion are unused.
func (v *EstudianteValidator) Validate(ctx context.Context, req *dto.EstudianteRequest, excludeID int64) error {
	exists, err := v.repo.ExistsByEmail(ctx, req.Email, excludeID)
	if err != nil {
		return internal(err, "failed to check email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrUniqueness, "Ya existe una persona con este email.")
	}
	exists, err = v.repo.ExistsByNumeroInscripcion(ctx, req.NumeroInscripcion, excludeID)
	if err != nil {
		return internal(err, "failed to check enrollment number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrUniqueness, "El número de inscripción ya existe: "+req.NumeroInscripcion)
	}
	return nil
}

type materiaLookup interface {
	ExistsByCodigo(ctx context.Context, codigo string, excludeID int64) (bool, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListPrerequisitoEdges(ctx context.Context) ([]models.PrerequisitoEdge, error)
}

// MateriaValidator enforces codigo uniqueness, credit range and a prerequisite graph without cycles.
type MateriaValidator struct {
	repo materiaLookup
}

// NewMateriaValidator constructs a MateriaValidator.
func NewMateriaValidator(repo materiaLookup) *MateriaValidator {
	return &MateriaValidator{repo: repo}
}

// ValidarCreditos requires a value between 1 and 10.
func ValidarCreditos(creditos *int) error {
	if creditos == nil || *creditos < 1 || *creditos > 10 {
		return fieldError("creditos", "Los créditos deben ser un valor entre 1 y 10.")
	}
	return nil
}

// Validate runs every materia rule. id is zero on create.
func (v *MateriaValidator) Validate(ctx context.Context, req *dto.MateriaRequest, id int64) error {
	exists, err := v.repo.ExistsByCodigo(ctx, req.CodigoUnico, id)
	if err != nil {
		return internal(err, "failed to check materia code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrUniqueness, "El código único ya existe: "+req.CodigoUnico)
	}
	if err := ValidarCreditos(req.Creditos); err != nil {
		return err
	}
	if len(req.Prerequisitos) == 0 {
		return nil
	}
	if id != 0 {
		for _, prereq := range req.Prerequisitos {
			if prereq == id {
				return fieldError("prerequisitos", "Una materia no puede ser prerequisito de sí misma.")
			}
		}
	}
	found, err := v.repo.ExistingIDs(ctx, req.Prerequisitos)
	if err != nil {
		return internal(err, "failed to load prerequisites")
	}
	if missing := difference(req.Prerequisitos, found); len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "Materia prerequisito no encontrada")
	}
	if id == 0 {
		return nil
	}
	edges, err := v.repo.ListPrerequisitoEdges(ctx)
	if err != nil {
		return internal(err, "failed to load prerequisite graph")
	}
	if FormsCycle(id, req.Prerequisitos, edges) {
		return fieldError("prerequisitos", "Los prerequisitos forman un ciclo.")
	}
	return nil
}

// FormsCycle reports whether giving materia id the prerequisites prereqs closes a loop in the graph.
func FormsCycle(id int64, prereqs []int64, edges []models.PrerequisitoEdge) bool {
	graph := make(map[int64][]int64)
	for _, e := range edges {
		if e.MateriaID == id {
			continue
		}
		graph[e.MateriaID] = append(graph[e.MateriaID], e.PrerequisitoID)
	}
	graph[id] = append([]int64(nil), prereqs...)

	visited := make(map[int64]bool)
	stack := append([]int64(nil), prereqs...)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == id {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, graph[current]...)
	}
	return false
}

func difference(want, have []int64) []int64 {
	seen := make(map[int64]struct{}, len(have))
	for _, id := range have {
		seen[id] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

type inscripcionLookup interface {
	ExistsByEstudianteAndMateria(ctx context.Context, estudianteID, materiaID, excludeID int64) (bool, error)
}

// InscripcionValidator enforces the enrollment business rules.
type InscripcionValidator struct {
	repo inscripcionLookup
}

// NewInscripcionValidator constructs an InscripcionValidator.
func NewInscripcionValidator(repo inscripcionLookup) *InscripcionValidator {
	return &InscripcionValidator{repo: repo}
}

// ValidarEstadoPermitido accepts activa or abandonada in any case.
func ValidarEstadoPermitido(estado string) error {
	if !models.EstadoInscripcion(strings.ToLower(strings.TrimSpace(estado))).Valid() {
		return fieldError("estado", "Estado no permitido. Debe ser 'activa' o 'abandonada'.")
	}
	return nil
}

// ValidarDuplicada fails when the student already holds an enrollment in the materia.
func (v *InscripcionValidator) ValidarDuplicada(ctx context.Context, estudianteID, materiaID, excludeID int64) error {
	exists, err := v.repo.ExistsByEstudianteAndMateria(ctx, estudianteID, materiaID, excludeID)
	if err != nil {
		return internal(err, "failed to check enrollment")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	}
	return nil
}

// Validate runs the state check followed by the duplicate check.
func (v *InscripcionValidator) Validate(ctx context.Context, req *dto.InscripcionRequest, excludeID int64) error {
	if err := ValidarEstadoPermitido(req.Estado); err != nil {
		return err
	}
	return v.ValidarDuplicada(ctx, req.IDEstudiante, req.IDMateria, excludeID)
}

func fieldError(field, msg string) error {
	return appErrors.WithDetails(appErrors.ErrValidation, msg, []appErrors.FieldError{{Field: field, Message: msg}})
}

func internal(err error, msg string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
}
