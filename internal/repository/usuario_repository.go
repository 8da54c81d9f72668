package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/universidad-api/internal/models"
)

// UsuarioRepository provides database access for operator accounts.
type UsuarioRepository struct {
	db *sqlx.DB
}

// NewUsuarioRepository creates a new instance of UsuarioRepository.
func NewUsuarioRepository(db *sqlx.DB) *UsuarioRepository {
	return &UsuarioRepository{db: db}
}

// FindByUsername returns a user by username.
func (r *UsuarioRepository) FindByUsername(ctx context.Context, username string) (*models.Usuario, error) {
	const query = `SELECT id, username, password_hash, rol, activo, ultimo_acceso, created_at FROM usuario WHERE username = $1 LIMIT 1`
	var usuario models.Usuario
	if err := r.db.GetContext(ctx, &usuario, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find usuario by username: %w", err)
	}
	return &usuario, nil
}

// Create inserts a new account and sets its ID.
func (r *UsuarioRepository) Create(ctx context.Context, usuario *models.Usuario) error {
	if usuario.CreatedAt.IsZero() {
		usuario.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO usuario (username, password_hash, rol, activo, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &usuario.ID, query, usuario.Username, usuario.PasswordHash, usuario.Rol, usuario.Activo, usuario.CreatedAt); err != nil {
		return fmt.Errorf("create usuario: %w", err)
	}
	return nil
}

// UpdateLastLogin updates the ultimo_acceso timestamp for a user.
func (r *UsuarioRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	const query = `UPDATE usuario SET ultimo_acceso = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
