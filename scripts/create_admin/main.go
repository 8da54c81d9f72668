package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/repository"
	"github.com/noah-isme/universidad-api/internal/service"
	"github.com/noah-isme/universidad-api/pkg/config"
	"github.com/noah-isme/universidad-api/pkg/database"
)

func main() {
	var (
		username string
		password string
		rol      string
		timeout  time.Duration
	)

	flag.StringVar(&username, "username", "admin", "Operator username")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "Operator password (defaults to $ADMIN_PASSWORD)")
	flag.StringVar(&rol, "rol", string(models.RolAdmin), "Role: ADMIN, OPERADOR or CONSULTA")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Database timeout")
	flag.Parse()

	if strings.TrimSpace(password) == "" {
		log.Fatal("password is required (-password or ADMIN_PASSWORD)")
	}
	role := models.Rol(strings.ToUpper(rol))
	if !role.Valid() {
		log.Fatalf("invalid rol %q", rol)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	usuario := &models.Usuario{Username: username, PasswordHash: hash, Rol: role, Activo: true}
	if err := repository.NewUsuarioRepository(db).Create(ctx, usuario); err != nil {
		if database.IsUniqueViolation(err) {
			log.Fatalf("usuario %q already exists", username)
		}
		log.Fatalf("failed to create usuario: %v", err)
	}

	log.Printf("created usuario %s (id=%d, rol=%s)", usuario.Username, usuario.ID, usuario.Rol)
}
