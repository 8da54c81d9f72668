package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/universidad-api/internal/models"
	"github.com/noah-isme/universidad-api/internal/validation"
	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.Usuario
	findErr          error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.Usuario, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func newAuthTestService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validation.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "universidad-api",
	})
}

func hashedUser(t *testing.T, password string, activo bool) *models.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Usuario{ID: 7, Username: "operador1", PasswordHash: string(hash), Rol: models.RolOperador, Activo: activo}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "password", true)}
	svc := newAuthTestService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "operador1", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RolOperador, res.Usuario.Rol)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "operador1", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "password", true)}
	svc := newAuthTestService(repo)
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Username: "operador1", Password: "wrong"})
	requireAppError(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "desconocido", Password: "password"})
	requireAppError(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "op", Password: "password"})
	requireAppError(t, err, appErrors.ErrValidation)

	repo.findErr = errors.New("connection reset")
	_, err = svc.Login(ctx, models.LoginRequest{Username: "operador1", Password: "password"})
	requireAppError(t, err, appErrors.ErrInternal)
	assert.False(t, repo.lastLoginUpdated)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "password", false)}
	svc := newAuthTestService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "operador1", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateToken(t *testing.T) {
	svc := newAuthTestService(&mockAuthRepo{})
	user := &models.Usuario{ID: 1, Username: "admin", Rol: models.RolAdmin}
	token, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RolAdmin, claims.Rol)

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "universidad-api"})
	_, err = other.ValidateToken(token)
	requireAppError(t, err, appErrors.ErrUnauthorized)

	_, err = svc.ValidateToken("not-a-token")
	requireAppError(t, err, appErrors.ErrUnauthorized)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3creta")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3creta")))
}
