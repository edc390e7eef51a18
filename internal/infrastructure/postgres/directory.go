package postgres

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

var _ ports.CustodianDirectory = (*Directory)(nil)

// Directory directorio de custodios leído de las tablas users y locations.
type Directory struct {
	users     *UserRepo
	locations *LocationRepo
}

// NewDirectory construye el directorio sobre el pool.
func NewDirectory(q Querier) *Directory {
	return &Directory{users: NewUserRepository(q), locations: NewLocationRepository(q)}
}

func (d *Directory) User(ctx context.Context, id string) (*entity.User, error) {
	return d.users.GetByID(ctx, id)
}

func (d *Directory) Location(ctx context.Context, id string) (*entity.Location, error) {
	return d.locations.GetByID(ctx, id)
}
