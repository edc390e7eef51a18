package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/auth"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/memory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/jwt"
)

func newAuth() (*auth.AuthUseCase, *memory.Store) {
	store := memory.NewStore()
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: "secreto", ExpMinutes: 10, Issuer: "irigtrack"}), store
}

func TestRegisterLogin(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "Ana@Example.org", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleRequester, u.Role)
	assert.Equal(t, "ana@example.org", u.Email)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@example.org", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.org", Password: "clave-segura"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse("secreto", out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleRequester, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@example.org", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@example.org", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, store := newAuth()
	ctx := context.Background()
	u, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: "bo@example.org", Password: "clave-segura", Name: "Bo", Role: entity.RoleSupply})
	require.NoError(t, err)

	stored, _ := store.Users().GetByID(ctx, u.ID)
	stored.Status = entity.UserStatusInactive
	require.NoError(t, store.Users().Update(ctx, stored))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "bo@example.org", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Email: "x@example.org", Password: "clave-segura", Name: "X", Role: "jefe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
