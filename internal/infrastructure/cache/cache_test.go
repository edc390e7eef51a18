package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

type countingDirectory struct {
	users, locations int
	fail             bool
}

func (c *countingDirectory) User(_ context.Context, id string) (*entity.User, error) {
	c.users++
	if c.fail {
		return nil, errors.New("db caída")
	}
	if id == "nadie" {
		return nil, nil
	}
	return &entity.User{ID: id, Role: entity.RoleApprover, Status: entity.UserStatusActive, PasswordHash: "secreto"}, nil
}

func (c *countingDirectory) Location(_ context.Context, id string) (*entity.Location, error) {
	c.locations++
	return &entity.Location{ID: id, Name: "Bodega", Personnel: "Ana"}, nil
}

func TestInMemoryCache_Expira(t *testing.T) {
	c := NewInMemory()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDirectoryCache_LecturaATravesDeCache(t *testing.T) {
	next := &countingDirectory{}
	d := NewDirectoryCache(next, NewInMemory(), time.Minute, nil)
	ctx := context.Background()

	u, err := d.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "secreto", u.PasswordHash, "la primera lectura viene del directorio")

	u, err = d.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleApprover, u.Role)
	assert.Empty(t, u.PasswordHash, "el hash no se guarda en caché")
	assert.Equal(t, 1, next.users)

	d.Forget(ctx, entity.CustodianUser, "u1")
	_, err = d.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.users)

	_, _ = d.Location(ctx, "l1")
	loc, err := d.Location(ctx, "l1")
	require.NoError(t, err)
	assert.True(t, loc.HasPersonnel())
	assert.Equal(t, 1, next.locations)
}

func TestDirectoryCache_NoGuardaAusentesNiErrores(t *testing.T) {
	next := &countingDirectory{}
	d := NewDirectoryCache(next, NewInMemory(), time.Minute, nil)
	ctx := context.Background()

	u, err := d.User(ctx, "nadie")
	require.NoError(t, err)
	assert.Nil(t, u)
	_, _ = d.User(ctx, "nadie")
	assert.Equal(t, 2, next.users)

	next.fail = true
	_, err = d.User(ctx, "u9")
	assert.Error(t, err)
}
