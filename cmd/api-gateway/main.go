package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/universidad-api/api/swagger"
	"github.com/noah-isme/universidad-api/internal/handler"
	"github.com/noah-isme/universidad-api/internal/repository"
	"github.com/noah-isme/universidad-api/internal/router"
	"github.com/noah-isme/universidad-api/internal/service"
	"github.com/noah-isme/universidad-api/internal/validation"
	"github.com/noah-isme/universidad-api/pkg/cache"
	"github.com/noah-isme/universidad-api/pkg/config"
	"github.com/noah-isme/universidad-api/pkg/database"
	"github.com/noah-isme/universidad-api/pkg/logger"
)

// @title Universidad API
// @version 1.0.0
// @description Administración académica: docentes, estudiantes, materias e inscripciones.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	cacheSvc := newCache(cfg, metrics, logr)
	validate := validation.New()

	usuarios := repository.NewUsuarioRepository(db)
	docentes := repository.NewDocenteRepository(db)
	estudiantes := repository.NewEstudianteRepository(db)
	materias := repository.NewMateriaRepository(db)
	inscripciones := repository.NewInscripcionRepository(db)

	authSvc := service.NewAuthService(usuarios, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	docenteSvc := service.NewDocenteService(docentes, cacheSvc, validate, logr)
	estudianteSvc := service.NewEstudianteService(estudiantes, inscripciones, cacheSvc, validate, logr)
	materiaSvc := service.NewMateriaService(materias, cacheSvc, validate, logr)
	inscripcionSvc := service.NewInscripcionService(inscripciones, materias, cacheSvc, metrics, validate, logr)

	r := router.New(cfg, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Docentes:      handler.NewDocenteHandler(docenteSvc),
		Estudiantes:   handler.NewEstudianteHandler(estudianteSvc),
		Materias:      handler.NewMateriaHandler(materiaSvc),
		Inscripciones: handler.NewInscripcionHandler(inscripcionSvc),
		Metrics:       handler.NewMetricsHandler(metrics, db),
	}, router.Deps{Tokens: authSvc, Metrics: metrics, Logger: logr})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "auth", cfg.Auth.Enabled, "cache", cfg.Cache.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newCache(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.CacheService {
	switch cfg.Cache.Driver {
	case config.CacheDriverNone:
		return service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	case config.CacheDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
			break
		}
		return service.NewCacheService(repository.NewCacheRepository(client, cfg.Cache.Prefix, logr), metrics, cfg.Cache.TTL, logr, true)
	}
	return service.NewCacheService(repository.NewMemoryCacheRepository(), metrics, cfg.Cache.TTL, logr, true)
}
