package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/universidad-api/internal/handler"
	"github.com/noah-isme/universidad-api/internal/middleware"
	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/service"
	"github.com/noah-isme/universidad-api/pkg/config"
	"github.com/noah-isme/universidad-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/universidad-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/universidad-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth          *handler.AuthHandler
	Docentes      *handler.DocenteHandler
	Estudiantes   *handler.EstudianteHandler
	Materias      *handler.MateriaHandler
	Inscripciones *handler.InscripcionHandler
	Metrics       *handler.MetricsHandler
}

// Deps carries the cross-cutting collaborators of the router.
type Deps struct {
	Tokens  middleware.TokenValidator
	Metrics *service.MetricsService
	Logger  *zap.Logger
}

// New builds the gin engine with every route under cfg.APIPrefix.
func New(cfg *config.Config, h Handlers, deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	if cfg.Auth.Enabled {
		secured.Use(middleware.JWT(deps.Tokens))
	} else {
		secured.Use(middleware.OptionalJWT(deps.Tokens))
	}
	secured.Use(middleware.Audit(deps.Logger, cfg.Auth.DefaultActor))

	writes := secured.Group("")
	if cfg.Auth.Enabled {
		writes.Use(middleware.RequireRoles(models.RolAdmin, models.RolOperador))
	}

	secured.GET("/auth/me", h.Auth.Me)
	secured.GET("/metrics/summary", h.Metrics.Summary)

	secured.GET("/docentes", h.Docentes.List)
	secured.GET("/docentes/empleado/:nroEmpleado", h.Docentes.GetByNroEmpleado)
	secured.GET("/docentes/:id", h.Docentes.Get)
	secured.GET("/docentes/:id/materias", h.Docentes.ListMaterias)
	writes.POST("/docentes", h.Docentes.Create)
	writes.PUT("/docentes/:id", h.Docentes.Update)
	writes.DELETE("/docentes/:id", h.Docentes.Delete)

	secured.GET("/estudiantes", h.Estudiantes.List)
	secured.GET("/estudiantes/numero/:numero", h.Estudiantes.GetByNumero)
	secured.GET("/estudiantes/:id", h.Estudiantes.Get)
	secured.GET("/estudiantes/:id/inscripciones", h.Estudiantes.ListInscripciones)
	writes.POST("/estudiantes", h.Estudiantes.Create)
	writes.PUT("/estudiantes/:id", h.Estudiantes.Update)
	writes.DELETE("/estudiantes/:id", h.Estudiantes.Delete)

	secured.GET("/materias", h.Materias.List)
	secured.GET("/materias/codigo/:codigo", h.Materias.GetByCodigo)
	secured.GET("/materias/:id", h.Materias.Get)
	writes.POST("/materias", h.Materias.Create)
	writes.PUT("/materias/:id", h.Materias.Update)
	writes.DELETE("/materias/:id", h.Materias.Delete)
	writes.PUT("/materias/:id/docentes", h.Materias.AsignarDocentes)

	secured.GET("/inscripciones", h.Inscripciones.List)
	secured.GET("/inscripciones/estudiante/:id", h.Inscripciones.ListByEstudiante)
	secured.GET("/inscripciones/materia/:id", h.Inscripciones.ListByMateria)
	secured.GET("/inscripciones/materia/:id/export", h.Inscripciones.Export)
	secured.GET("/inscripciones/:id", h.Inscripciones.Get)
	writes.POST("/inscripciones", h.Inscripciones.Create)
	writes.PUT("/inscripciones/:id", h.Inscripciones.Update)
	writes.PUT("/inscripciones/:id/abandonar", h.Inscripciones.Abandon)

	return r
}
